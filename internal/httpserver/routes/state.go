package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
)

func init() { Register(registerState) }

func registerState(r chi.Router, d deps.Deps) {
	a := authed(r, d)
	a.Get("/api/state", handlers.State(d))
	a.Post("/api/banner/dismiss", handlers.DismissBanner(d))
	a.Get("/api/categories/{category}", handlers.Category(d))
	a.Get("/api/search", handlers.Search(d))
}
