package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

const (
	// DefaultSessionIdleTTL is the inactivity after which a session is closed
	DefaultSessionIdleTTL = 30 * time.Minute
)

// Reaper closes sessions idle since before a cutoff
type Reaper interface {
	Reap(ctx context.Context, cutoff time.Time) []string
}

// SessionReaper periodically closes idle sessions, releasing their subscriptions
type SessionReaper struct {
	sessions Reaper
	logger   logger.Logger
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

// NewSessionReaper creates a new session reaper
func NewSessionReaper(
	sessions Reaper,
	log logger.Logger,
	interval time.Duration,
	ttl time.Duration,
) *SessionReaper {
	if ttl == 0 {
		ttl = DefaultSessionIdleTTL
	}

	return &SessionReaper{
		sessions: sessions,
		logger:   log,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic reaping process
func (sr *SessionReaper) Start(ctx context.Context) error {
	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sr.Collect(ctx)
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reaper
func (sr *SessionReaper) Stop() {
	close(sr.stopCh)
}

// Collect closes every session idle for longer than the ttl and returns how many
func (sr *SessionReaper) Collect(ctx context.Context) int {
	cutoff := sr.now().Add(-sr.ttl)
	reaped := sr.sessions.Reap(ctx, cutoff)

	if len(reaped) > 0 {
		sr.logger.Info("idle sessions closed",
			logger.Int("count", len(reaped)),
			logger.Duration("idle_ttl", sr.ttl))
	} else {
		sr.logger.Debug("no idle session to close")
	}

	return len(reaped)
}
