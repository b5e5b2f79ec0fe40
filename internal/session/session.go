// Package session bundles the per-owner state of the launcher: the cache, its
// live subscriptions, the mutation gateway and the dictation controller.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/cache"
	"github.com/MrSnakeDoc/launchpad/internal/dictation"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/mutation"
	"github.com/MrSnakeDoc/launchpad/internal/syncer"
)

// Session is one owner's open context. Its fields are set once by the Manager.
type Session struct {
	Owner     string
	Cache     *cache.Cache
	Gateway   *mutation.Gateway
	Dictation *dictation.Controller
	Relay     *dictation.Relay
	Banner    *Banner
	Events    *Broadcaster

	handle  *syncer.Handle
	cancel  context.CancelFunc
	watchWG sync.WaitGroup
	logger  logger.Logger
	now     func() time.Time

	openedAt time.Time
	lastSeen atomic.Int64

	remindMu  sync.Mutex
	announced map[string]bool

	closeOnce sync.Once
	closeErr  error
}

// Touch records activity.
func (s *Session) Touch() {
	s.lastSeen.Store(s.now().UnixNano())
}

// LastSeen returns the time of the last Touch.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) OpenedAt() time.Time { return s.openedAt }

// Sync returns the per-collection sync statuses.
func (s *Session) Sync() []syncer.Status { return s.handle.Statuses() }

// Health returns the folded sync health.
func (s *Session) Health() syncer.Health { return s.handle.Health() }

// Ready waits for the first snapshot of every collection.
func (s *Session) Ready(ctx context.Context) error { return s.handle.Ready(ctx) }

// Idle reports whether nothing has used the session since before cutoff.
// A session with live event listeners is never idle.
func (s *Session) Idle(cutoff time.Time) bool {
	return s.Events.Listeners() == 0 && s.LastSeen().Before(cutoff)
}

// DueReminders returns overdue notes not yet announced, marking them announced.
// A note whose reminder moves back into the future can be announced again.
func (s *Session) DueReminders(now time.Time) []*domain.Note {
	s.remindMu.Lock()
	defer s.remindMu.Unlock()

	var due []*domain.Note
	live := make(map[string]bool)
	for _, n := range s.Cache.Notes() {
		if !n.Overdue(now) {
			continue
		}
		live[n.ID] = true
		if !s.announced[n.ID] {
			due = append(due, n)
		}
	}
	s.announced = live
	return due
}

// Close flushes pending writes within ctx, then releases the subscriptions,
// stops dictation and closes the listeners. Safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.Gateway.Flush(ctx); err != nil {
			s.logger.Warn("pending writes not flushed",
				logger.String("owner", s.Owner),
				logger.Int("pending", int(s.Gateway.Pending())),
				logger.Error(err))
			errs = append(errs, err)
		}
		s.Dictation.Close()
		if err := s.handle.Unsubscribe(); err != nil {
			errs = append(errs, err)
		}
		s.cancel()
		s.watchWG.Wait()
		s.Events.Close()
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// watch turns cache changes into state events until ctx ends.
func (s *Session) watch(ctx context.Context) {
	ch, cancel := s.Cache.Watch()
	s.watchWG.Add(1)
	go func() {
		defer s.watchWG.Done()
		defer cancel()
		for {
			select {
			case <-ch:
				s.Events.Publish(Event{Type: EventState, At: s.now(), Data: map[string]uint64{"version": s.Cache.Version()}})
			case <-ctx.Done():
				return
			}
		}
	}()
}
