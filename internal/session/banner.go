package session

import (
	"sync"
	"time"
)

// BannerState is the user-visible report of the last failed remote write.
type BannerState struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Banner holds at most one message, replaced by the latest failure.
type Banner struct {
	mu    sync.RWMutex
	state *BannerState
}

func (b *Banner) Set(msg string, at time.Time) BannerState {
	s := BannerState{Message: msg, At: at}
	b.mu.Lock()
	b.state = &s
	b.mu.Unlock()
	return s
}

// Get returns the current message, or nil when there is none.
func (b *Banner) Get() *BannerState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.state == nil {
		return nil
	}
	s := *b.state
	return &s
}

func (b *Banner) Clear() {
	b.mu.Lock()
	b.state = nil
	b.mu.Unlock()
}
