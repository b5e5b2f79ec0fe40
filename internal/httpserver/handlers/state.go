package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/dictation"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/session"
	"github.com/MrSnakeDoc/launchpad/internal/syncer"
	"github.com/MrSnakeDoc/launchpad/internal/view"
)

type categorySummary struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
	Folder bool   `json:"folder,omitempty"`
}

type stateResponse struct {
	Owner       string               `json:"owner"`
	Profile     domain.Profile       `json:"profile"`
	Categories  []categorySummary    `json:"categories"`
	Collections []*domain.Collection `json:"collections"`
	Shortcuts   int                  `json:"shortcuts"`
	Notes       int                  `json:"notes"`
	Dictation   dictation.Snapshot   `json:"dictation"`
	Banner      *session.BannerState `json:"banner"`
	Health      syncer.Health        `json:"health"`
	Sync        []syncer.Status      `json:"sync"`
	Version     uint64               `json:"version"`
}

// State returns the session summary the UI renders its chrome from.
func State(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := current(r)
		c := s.Cache

		cats := make([]categorySummary, 0, len(domain.FixedCategories))
		for _, tag := range domain.FixedCategories {
			cats = append(cats, categorySummary{
				ID:    tag,
				Label: d.Catalog.Label(tag),
				Count: c.CountIn(domain.Fixed(tag)) + len(d.Catalog.Apps(tag)),
			})
		}
		collections := c.Collections()
		for _, col := range collections {
			cats = append(cats, categorySummary{
				ID:     col.Ref().String(),
				Label:  col.Name,
				Count:  c.CountIn(col.Ref()),
				Folder: true,
			})
		}

		writeJSON(w, http.StatusOK, stateResponse{
			Owner:       s.Owner,
			Profile:     c.Profile(),
			Categories:  cats,
			Collections: collections,
			Shortcuts:   len(c.Shortcuts()),
			Notes:       len(c.Notes()),
			Dictation:   s.Dictation.Snapshot(),
			Banner:      s.Banner.Get(),
			Health:      s.Health(),
			Sync:        s.Sync(),
			Version:     c.Version(),
		})
	}
}

// DismissBanner clears the remote failure banner.
func DismissBanner(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current(r).Banner.Clear()
		w.WriteHeader(http.StatusNoContent)
	}
}

type groupsResponse struct {
	Groups []*view.Group `json:"groups"`
}

// Category returns one category view, or every group for "all".
func Category(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := current(r)
		raw := chi.URLParam(r, "category")

		if strings.EqualFold(raw, "all") {
			mode, err := view.ParseSortMode(r.URL.Query().Get("sort"))
			if err != nil {
				writeError(w, d.Logger, err)
				return
			}
			groups := d.Views.All(s.Cache, mode)
			if groups == nil {
				groups = []*view.Group{}
			}
			writeJSON(w, http.StatusOK, groupsResponse{Groups: groups})
			return
		}

		ref, err := domain.ParseCategory(raw)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		g, err := d.Views.Category(s.Cache, ref, r.URL.Query().Get("q"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if g.Shortcuts == nil {
			g.Shortcuts = []*domain.Shortcut{}
		}
		writeJSON(w, http.StatusOK, g)
	}
}

type searchResult struct {
	Shortcut *domain.Shortcut `json:"shortcut"`
	Score    float64          `json:"score"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results []searchResult `json:"results"`
}

// Search ranks user and catalog shortcuts by name.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		matches := d.Views.Search(current(r).Cache, q)

		resp := searchResponse{Query: q, Results: make([]searchResult, 0, len(matches))}
		for _, m := range matches {
			resp.Results = append(resp.Results, searchResult{Shortcut: m.Shortcut, Score: m.Score})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
