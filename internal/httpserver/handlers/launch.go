package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/launch"
	"github.com/MrSnakeDoc/launchpad/internal/session"
)

type launchRequest struct {
	ShortcutID string `json:"shortcutId"`
	URL        string `json:"url"`
	Mode       string `json:"mode"`
}

// openMode resolves the requested mode, falling back to the profile's.
func openMode(s *session.Session, raw string) (domain.OpenMode, error) {
	if strings.TrimSpace(raw) == "" {
		return s.Cache.Profile().OpenMode, nil
	}
	return domain.ParseOpenMode(raw)
}

// Launch resolves a shortcut (user or built-in) or a raw URL into an action.
func Launch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req launchRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		s := current(r)
		mode, err := openMode(s, req.Mode)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		target := req.URL
		switch {
		case req.ShortcutID != "":
			sc, ok := s.Cache.Shortcut(req.ShortcutID)
			if !ok {
				sc, ok = d.Catalog.App(req.ShortcutID)
			}
			if !ok {
				writeError(w, d.Logger, fmt.Errorf("%w: shortcut %s", domain.ErrNotFound, req.ShortcutID))
				return
			}
			target = sc.URL
		default:
			if target, err = domain.NormalizeURL(target); err != nil {
				writeError(w, d.Logger, err)
				return
			}
		}

		action, err := d.Launcher.Dispatch(target, mode)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, action)
	}
}

type askRequest struct {
	Provider string `json:"provider"`
	Prompt   string `json:"prompt"`
	Voice    bool   `json:"voice"`
	Mode     string `json:"mode"`
}

// Ask forwards a prompt, or opens the voice interface, of an AI provider.
func Ask(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		mode, err := openMode(current(r), req.Mode)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		p, ok := d.Catalog.Provider(req.Provider)
		if !ok {
			writeError(w, d.Logger, fmt.Errorf("%w: provider %q", domain.ErrNotFound, req.Provider))
			return
		}

		var action launch.Action
		if req.Voice {
			action, err = d.Launcher.Voice(p, mode)
		} else {
			action, err = d.Launcher.Ask(p, req.Prompt, mode)
		}
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, action)
	}
}

type searchRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
}

// WebSearch opens a web search for the home search box.
func WebSearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		mode, err := openMode(current(r), req.Mode)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		action, err := d.Launcher.Search(req.Query, mode)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, action)
	}
}

// Providers lists the AI providers.
func Providers(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]launch.Provider{"providers": d.Catalog.Providers()})
	}
}
