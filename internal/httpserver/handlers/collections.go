package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
)

type createCollectionRequest struct {
	Name string `json:"name"`
}

func CreateCollection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCollectionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		col, err := current(r).Gateway.CreateCollection(req.Name)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, col)
	}
}

type deleteCollectionResponse struct {
	Moved int `json:"moved"`
}

// DeleteCollection moves the collection's shortcuts to the fallback category,
// then removes the collection.
func DeleteCollection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		moved, err := current(r).Gateway.DeleteCollection(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteCollectionResponse{Moved: moved})
	}
}
