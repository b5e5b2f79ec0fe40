package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/syncer"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Mode       string `json:"mode,omitempty"`
	AppsLoaded *int   `json:"apps_loaded,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	LastCheck  string `json:"last_check,omitempty"`
	LatencyMS  *int64 `json:"latency_ms,omitempty"`
	Error      string `json:"error,omitempty"`
}

type sessionStatus struct {
	Owner    string          `json:"owner"`
	Health   syncer.Health   `json:"health"`
	LastSeen string          `json:"last_seen"`
	Pending  int64           `json:"pending_writes"`
	Sync     []syncer.Status `json:"sync"`
}

type infraResponse struct {
	SyncMode   string                     `json:"sync_mode"`
	Components map[string]componentStatus `json:"components"`
	Sessions   []sessionStatus            `json:"sessions"`
}

const infraTimeFormat = "2006-01-02 15:04:05"

// Infra reports store reachability, catalog state and per-session sync health.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		apps := d.Catalog.Count()
		components := map[string]componentStatus{
			"catalog": {
				OK:         apps > 0,
				AppsLoaded: &apps,
				LastReload: d.Catalog.LoadedAt().Format(infraTimeFormat),
			},
			"store": storeStatus(d),
		}

		sessions := make([]sessionStatus, 0, d.Sessions.Len())
		for _, s := range d.Sessions.List() {
			sessions = append(sessions, sessionStatus{
				Owner:    s.Owner,
				Health:   s.Health(),
				LastSeen: s.LastSeen().Format(infraTimeFormat),
				Pending:  s.Gateway.Pending(),
				Sync:     s.Sync(),
			})
		}

		response := infraResponse{
			SyncMode:   determineSyncMode(components, sessions),
			Components: components,
			Sessions:   sessions,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineSyncMode(components map[string]componentStatus, sessions []sessionStatus) string {
	// Store down = writes queue up and fail, snapshots stall
	if store, exists := components["store"]; exists && !store.OK {
		return "offline"
	}

	for _, s := range sessions {
		if s.Health == syncer.HealthDegraded {
			return "degraded"
		}
	}

	return "live"
}

func storeStatus(d deps.Deps) componentStatus {
	if d.Probe == nil {
		return componentStatus{OK: true, Mode: d.StoreName}
	}

	last := d.Probe.Last()
	if last.CheckedAt.IsZero() {
		return componentStatus{OK: false, Mode: d.StoreName, Error: "not probed yet"}
	}

	latency := last.Latency.Milliseconds()
	return componentStatus{
		OK:        last.Reachable,
		Mode:      d.StoreName,
		LastCheck: last.CheckedAt.Format(infraTimeFormat),
		LatencyMS: &latency,
		Error:     last.Error,
	}
}
