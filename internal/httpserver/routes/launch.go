package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
)

func init() { Register(registerLaunch) }

func registerLaunch(r chi.Router, d deps.Deps) {
	a := authed(r, d)
	a.Post("/api/launch", handlers.Launch(d))
	a.Post("/api/ask", handlers.Ask(d))
	a.Post("/api/web-search", handlers.WebSearch(d))
	a.Get("/api/providers", handlers.Providers(d))
}
