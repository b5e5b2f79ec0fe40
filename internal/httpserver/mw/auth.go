package mw

import (
	"context"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/identity"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/session"
)

type ctxKey int

const sessionKey ctxKey = iota

// Opener opens or returns the session of an owner.
type Opener interface {
	Open(owner string) (*session.Session, error)
}

// Auth verifies the bearer token and attaches the owner's session to the
// request context. Browsers cannot set headers on websocket upgrades, so the
// token is also accepted from the access_token query parameter.
func Auth(ids *identity.Issuer, sessions Opener, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := identity.BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				token = r.URL.Query().Get("access_token")
			}

			owner, err := ids.Verify(token)
			if err != nil {
				log.Debug("auth rejected", logger.String("path", r.URL.Path), logger.Error(err))
				w.Header().Set("WWW-Authenticate", `Bearer realm="launchpad"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			s, err := sessions.Open(owner)
			if err != nil {
				log.Warn("session open failed", logger.String("owner", owner), logger.Error(err))
				status := http.StatusServiceUnavailable
				if errors.Is(err, domain.ErrUnauthenticated) {
					status = http.StatusUnauthorized
				}
				http.Error(w, http.StatusText(status), status)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// WithSession returns ctx carrying s.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom returns the session attached by Auth.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok && s != nil
}
