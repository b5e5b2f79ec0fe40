package syncer

import "time"

// Health of one collection subscription.
type Health string

const (
	HealthConnecting Health = "connecting"
	HealthOK         Health = "ok"
	HealthDegraded   Health = "degraded"
)

// Status is the observable state of one subscription.
type Status struct {
	Collection   string    `json:"collection"`
	Health       Health    `json:"health"`
	LastError    string    `json:"lastError,omitempty"`
	LastSnapshot time.Time `json:"lastSnapshot,omitempty"`
	Snapshots    int       `json:"snapshots"`
}

// Overall folds per-collection health: degraded wins over connecting, which wins over ok.
func Overall(statuses []Status) Health {
	h := HealthOK
	for _, s := range statuses {
		switch s.Health {
		case HealthDegraded:
			return HealthDegraded
		case HealthConnecting:
			h = HealthConnecting
		}
	}
	return h
}
