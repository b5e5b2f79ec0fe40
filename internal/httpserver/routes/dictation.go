package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/mw"
)

func init() {
	Register(registerDictation)
	Register(registerEvents)
}

func registerDictation(r chi.Router, d deps.Deps) {
	a := authed(r, d)
	a.Get("/api/dictation", handlers.DictationState(d))
	a.Post("/api/dictation/start", handlers.StartDictation(d))
	a.Post("/api/dictation/retarget", handlers.RetargetDictation(d))
	a.Post("/api/dictation/stop", handlers.StopDictation(d))
	a.Post("/api/dictation/result", handlers.DictationResult(d))
	a.Post("/api/dictation/end", handlers.DictationEnd(d))
}

// The event stream is long-lived, so it skips the request timeout.
func registerEvents(r chi.Router, d deps.Deps) {
	r.With(mw.Auth(d.Identity, d.Sessions, d.Logger)).Get("/api/events", handlers.Events(d))
}
