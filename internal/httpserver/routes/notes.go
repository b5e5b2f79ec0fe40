package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
)

func init() { Register(registerNotes) }

func registerNotes(r chi.Router, d deps.Deps) {
	a := authed(r, d)
	a.Get("/api/notes", handlers.ListNotes(d))
	a.Post("/api/notes", handlers.CreateNote(d))
	a.Get("/api/notes/reminders", handlers.Reminders(d))
	a.Get("/api/notes/export", handlers.ExportNotes(d))
	a.Delete("/api/notes/{id}", handlers.DeleteNote(d))
}
