package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/mutation"
)

type createShortcutRequest struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Category string `json:"categoryId"`
	Icon     string `json:"icon"`
}

func CreateShortcut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createShortcutRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		ref, err := domain.ParseCategory(req.Category)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		sc, err := current(r).Gateway.CreateShortcut(mutation.ShortcutDraft{
			Name:     req.Name,
			URL:      req.URL,
			Category: ref,
			Icon:     req.Icon,
		})
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, sc)
	}
}

type updateShortcutRequest struct {
	Name     *string `json:"name"`
	URL      *string `json:"url"`
	Icon     *string `json:"icon"`
	Category *string `json:"categoryId"`
	Pinned   *bool   `json:"pinned"`
	Order    *int    `json:"order"`
}

func (req updateShortcutRequest) patch() (domain.ShortcutPatch, error) {
	p := domain.ShortcutPatch{
		Name:    req.Name,
		URL:     req.URL,
		IconURL: req.Icon,
		Pinned:  req.Pinned,
		Order:   req.Order,
	}
	if req.Category != nil {
		ref, err := domain.ParseCategory(*req.Category)
		if err != nil {
			return p, err
		}
		p.Category = &ref
	}
	return p, nil
}

func UpdateShortcut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateShortcutRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		patch, err := req.patch()
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		sc, err := current(r).Gateway.UpdateShortcut(chi.URLParam(r, "id"), patch)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, sc)
	}
}

func DeleteShortcut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := current(r).Gateway.DeleteShortcut(chi.URLParam(r, "id")); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func TogglePin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := current(r).Gateway.TogglePin(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, sc)
	}
}

type reorderRequest struct {
	Moving string `json:"moving"`
	Target string `json:"target"`
}

type orderChange struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// Reorder drops the moving shortcut immediately before the target.
func Reorder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		changes, err := current(r).Gateway.Reorder(req.Moving, req.Target)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		out := make([]orderChange, len(changes))
		for i, c := range changes {
			out[i] = orderChange{ID: c.ID, Order: c.Order}
		}
		writeJSON(w, http.StatusOK, map[string][]orderChange{"changes": out})
	}
}
