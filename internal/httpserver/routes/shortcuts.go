package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
)

func init() {
	Register(registerShortcuts)
	Register(registerCollections)
	Register(registerProfile)
}

func registerShortcuts(r chi.Router, d deps.Deps) {
	a := authed(r, d)
	a.Post("/api/shortcuts", handlers.CreateShortcut(d))
	a.Post("/api/shortcuts/reorder", handlers.Reorder(d))
	a.Patch("/api/shortcuts/{id}", handlers.UpdateShortcut(d))
	a.Delete("/api/shortcuts/{id}", handlers.DeleteShortcut(d))
	a.Post("/api/shortcuts/{id}/pin", handlers.TogglePin(d))
}

func registerCollections(r chi.Router, d deps.Deps) {
	a := authed(r, d)
	a.Post("/api/collections", handlers.CreateCollection(d))
	a.Delete("/api/collections/{id}", handlers.DeleteCollection(d))
}

func registerProfile(r chi.Router, d deps.Deps) {
	authed(r, d).Patch("/api/profile", handlers.UpdateProfile(d))
}
