package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/session"
)

// SessionLister lists the open sessions
type SessionLister interface {
	List() []*session.Session
}

// ReminderScanner announces overdue note reminders of open sessions, once per note
type ReminderScanner struct {
	sessions SessionLister
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

// NewReminderScanner creates a new reminder scanner
func NewReminderScanner(
	sessions SessionLister,
	log logger.Logger,
	interval time.Duration,
) *ReminderScanner {
	return &ReminderScanner{
		sessions: sessions,
		logger:   log,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic scan
func (rs *ReminderScanner) Start(ctx context.Context) error {
	ticker := time.NewTicker(rs.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rs.Scan()
			case <-rs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the scanner
func (rs *ReminderScanner) Stop() {
	close(rs.stopCh)
}

// Scan announces newly overdue reminders and returns how many were announced
func (rs *ReminderScanner) Scan() int {
	now := rs.now()
	announced := 0

	for _, s := range rs.sessions.List() {
		for _, n := range s.DueReminders(now) {
			rs.logger.Info("reminder due",
				logger.String("owner", s.Owner),
				logger.String("note_id", n.ID),
				logger.Time("reminder_at", *n.ReminderAt))
			s.Events.Publish(session.Event{Type: session.EventReminder, At: now, Data: n})
			announced++
		}
	}

	return announced
}
