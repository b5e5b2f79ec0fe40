package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/view"
)

type notesResponse struct {
	Notes []*domain.Note `json:"notes"`
}

func nonNil(notes []*domain.Note) []*domain.Note {
	if notes == nil {
		return []*domain.Note{}
	}
	return notes
}

// ListNotes returns the notes newest first, filtered by ?q=.
func ListNotes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notes := view.Notes(current(r).Cache, r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, notesResponse{Notes: nonNil(notes)})
	}
}

type createNoteRequest struct {
	Text string   `json:"text"`
	Tags []string `json:"tags"`
	// TagText is the raw comma-separated input, merged with Tags.
	TagText    string     `json:"tagText"`
	ReminderAt *time.Time `json:"reminderAt"`
	Color      string     `json:"color"`
}

// CreateNote saves a note. Blank text is accepted and ignored.
func CreateNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createNoteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		n, err := current(r).Gateway.SaveNote(domain.NoteDraft{
			Text:       req.Text,
			Tags:       append(req.Tags, domain.SplitTags(req.TagText)...),
			ReminderAt: req.ReminderAt,
			Color:      req.Color,
		})
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if n == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusCreated, n)
	}
}

func DeleteNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := current(r).Gateway.DeleteNote(chi.URLParam(r, "id")); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Reminders returns the notes whose reminder is due.
func Reminders(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notes := view.Reminders(current(r).Cache, d.Now())
		writeJSON(w, http.StatusOK, notesResponse{Notes: nonNil(notes)})
	}
}

// ExportNotes downloads the filtered notes as JSON or plain text.
func ExportNotes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := view.ParseExportFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		body, ctype, err := view.ExportNotes(view.Notes(current(r).Cache, r.URL.Query().Get("q")), format)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		w.Header().Set("Content-Type", ctype)
		w.Header().Set("Content-Disposition", `attachment; filename="notes.`+string(format)+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}
