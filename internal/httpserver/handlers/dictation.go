package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/launchpad/internal/dictation"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
)

type targetRequest struct {
	Target string `json:"target"`
}

type resultRequest struct {
	Transcript string `json:"transcript"`
}

func DictationState(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, current(r).Dictation.Snapshot())
	}
}

// StartDictation toggles capture into the requested buffer.
func StartDictation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req targetRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		snap, err := current(r).Dictation.Start(dictation.Target(req.Target))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func RetargetDictation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req targetRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		snap, err := current(r).Dictation.Retarget(dictation.Target(req.Target))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func StopDictation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, current(r).Dictation.Stop())
	}
}

// DictationResult relays a cumulative transcript from the device recognizer.
// The controller applies it asynchronously.
func DictationResult(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resultRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if err := current(r).Relay.Push(req.Transcript); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// DictationEnd relays the device-side end of capture.
func DictationEnd(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current(r).Relay.End()
		w.WriteHeader(http.StatusAccepted)
	}
}
