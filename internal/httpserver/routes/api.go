package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/mw"
)

const apiTimeout = 10 * time.Second

// authed scopes r to requests carrying a valid device token.
func authed(r chi.Router, d deps.Deps) chi.Router {
	return r.With(mw.Auth(d.Identity, d.Sessions, d.Logger), middleware.Timeout(apiTimeout))
}
