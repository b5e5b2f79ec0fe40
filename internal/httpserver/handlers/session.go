package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/identity"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

type sessionResponse struct {
	identity.Token
	Profile domain.Profile `json:"profile"`
}

// CreateSession issues a device token and opens its session. A caller that
// already holds a valid token keeps its owner id and gets a fresh expiry.
func CreateSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			tok identity.Token
			err error
		)
		if owner, verr := d.Identity.Verify(identity.BearerToken(r.Header.Get("Authorization"))); verr == nil {
			tok, err = d.Identity.IssueFor(owner)
		} else {
			tok, err = d.Identity.Issue()
		}
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		s, err := d.Sessions.Open(tok.Owner)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		d.Logger.Info("session issued",
			logger.String("owner", tok.Owner),
			logger.Time("expires_at", tok.ExpiresAt))
		writeJSON(w, http.StatusCreated, sessionResponse{Token: tok, Profile: s.Cache.Profile()})
	}
}

// DeleteSession closes the caller's session, flushing pending writes.
func DeleteSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := current(r)
		if err := d.Sessions.Close(r.Context(), s.Owner); err != nil {
			d.Logger.Warn("session closed with errors", logger.String("owner", s.Owner), logger.Error(err))
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
