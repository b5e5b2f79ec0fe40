package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/launchpad/internal/dictation"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/mutation"
	"github.com/MrSnakeDoc/launchpad/internal/ordering"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
	"github.com/MrSnakeDoc/launchpad/internal/remote/memory"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newManager(t *testing.T) (*Manager, *memory.Store, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}
	store := memory.New()
	m := NewManager(context.Background(), store, ordering.New(language.French), logger.NewNop(), Config{
		WriteTimeout: time.Second,
		Location:     time.UTC,
		Locale:       language.French,
		Now:          clk.Now,
	})
	t.Cleanup(func() { _ = m.CloseAll(context.Background()) })
	return m, store, clk
}

func ready(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Ready(ctx); err != nil {
		t.Fatalf("Ready() error = %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	m, store, _ := newManager(t)

	a, err := m.Open("owner-1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	b, err := m.Open("owner-1")
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	if a != b {
		t.Fatal("Open() created a second session for the same owner")
	}
	if got := store.Subscribers(); got != len(remote.AllCollections) {
		t.Errorf("subscribers = %d, want %d", got, len(remote.AllCollections))
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d", m.Len())
	}
	ready(t, a)
}

func TestOpenConcurrent(t *testing.T) {
	m, store, _ := newManager(t)

	var wg sync.WaitGroup
	sessions := make([]*Session, 8)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Open("owner-1")
			if err != nil {
				t.Errorf("Open() error = %v", err)
				return
			}
			sessions[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range sessions[1:] {
		if s != sessions[0] {
			t.Fatal("concurrent opens returned different sessions")
		}
	}
	if got := store.Subscribers(); got != len(remote.AllCollections) {
		t.Errorf("subscribers = %d, want %d", got, len(remote.AllCollections))
	}
}

func TestOpenRejectsEmptyOwner(t *testing.T) {
	m, _, _ := newManager(t)
	if _, err := m.Open(""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestOpenFailureLeavesNothingOpen(t *testing.T) {
	m, store, _ := newManager(t)
	store.FailSubscribe(remote.CollectionPath("owner-1", remote.Notes), errors.New("permission denied"))

	_, err := m.Open("owner-1")
	if !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Fatalf("err = %v, want ErrRemoteUnavailable", err)
	}
	if store.Subscribers() != 0 {
		t.Errorf("subscribers left open: %d", store.Subscribers())
	}
	if m.Len() != 0 {
		t.Errorf("failed session registered")
	}
}

func TestCloseReleasesSubscriptions(t *testing.T) {
	m, store, _ := newManager(t)
	s, err := m.Open("owner-1")
	if err != nil {
		t.Fatal(err)
	}
	ready(t, s)
	events, _ := s.Events.Listen()

	if err := m.Close(context.Background(), "owner-1"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if store.Subscribers() != 0 {
		t.Errorf("subscribers = %d after close", store.Subscribers())
	}
	if _, ok := m.Get("owner-1"); ok {
		t.Error("closed session still registered")
	}
	for range events {
	}
	if err := m.Close(context.Background(), "owner-1"); err != nil {
		t.Errorf("closing twice: %v", err)
	}
}

func TestReap(t *testing.T) {
	m, _, clk := newManager(t)

	idle, _ := m.Open("idle")
	busy, _ := m.Open("busy")
	watched, _ := m.Open("watched")
	_, stop := watched.Events.Listen()
	defer stop()

	clk.Advance(2 * time.Hour)
	busy.Touch()

	reaped := m.Reap(context.Background(), clk.Now().Add(-time.Hour))
	if len(reaped) != 1 || reaped[0] != "idle" {
		t.Fatalf("reaped = %v, want [idle]", reaped)
	}
	if _, ok := m.Get(idle.Owner); ok {
		t.Error("idle session survived")
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestDueRemindersAnnouncedOnce(t *testing.T) {
	m, _, clk := newManager(t)
	s, _ := m.Open("owner-1")
	ready(t, s)

	past := clk.Now().Add(-time.Minute)
	future := clk.Now().Add(time.Hour)
	s.Cache.ReplaceNotes([]*domain.Note{
		{ID: "due", Text: "call", ReminderAt: &past},
		{ID: "later", Text: "book", ReminderAt: &future},
	}, remote.Notes)

	due := s.DueReminders(clk.Now())
	if len(due) != 1 || due[0].ID != "due" {
		t.Fatalf("first scan = %v", due)
	}
	if again := s.DueReminders(clk.Now()); len(again) != 0 {
		t.Fatalf("second scan re-announced %d notes", len(again))
	}

	clk.Advance(2 * time.Hour)
	due = s.DueReminders(clk.Now())
	if len(due) != 1 || due[0].ID != "later" {
		t.Fatalf("later scan = %v", due)
	}
}

func TestRemoteFailureRaisesBanner(t *testing.T) {
	m, store, _ := newManager(t)
	s, _ := m.Open("owner-1")
	ready(t, s)
	events, stop := s.Events.Listen()
	defer stop()

	store.FailWrites(remote.CollectionPath("owner-1", remote.Links), errors.New("quota exceeded"))
	if _, err := s.Gateway.CreateShortcut(mutation.ShortcutDraft{
		Name:     "Site",
		URL:      "example.com",
		Category: domain.Fixed(domain.CategoryTools),
	}); err != nil {
		t.Fatalf("CreateShortcut() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Gateway.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Banner.Get() == nil {
		t.Fatal("no banner after failed write")
	}

	for {
		select {
		case ev := <-events:
			if ev.Type == EventBanner {
				return
			}
		case <-ctx.Done():
			t.Fatal("no banner event published")
		}
	}
}

func TestDictationEventsPublished(t *testing.T) {
	m, _, _ := newManager(t)
	s, _ := m.Open("owner-1")
	events, stop := s.Events.Listen()
	defer stop()
	release := s.Dictation.Observe()
	defer release()

	if _, err := s.Dictation.Start("note"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == EventDictation {
				return
			}
		case <-timeout:
			t.Fatal("no dictation event")
		}
	}
}

func TestCloseReleasesDictation(t *testing.T) {
	m, _, _ := newManager(t)

	for _, owner := range []string{"owner-1", "owner-2", "owner-3"} {
		s, err := m.Open(owner)
		if err != nil {
			t.Fatalf("Open(%q) error = %v", owner, err)
		}
		s.Dictation.Observe()
		if _, err := s.Dictation.Start("note"); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = m.Close(ctx, owner)
		cancel()
		if err != nil {
			t.Fatalf("Close(%q) error = %v", owner, err)
		}

		if err := s.Relay.Push("after logout"); !errors.Is(err, dictation.ErrNotListening) {
			t.Errorf("%s: push after close = %v, want ErrNotListening", owner, err)
		}
		if _, err := s.Dictation.Start("query"); !errors.Is(err, dictation.ErrClosed) {
			t.Errorf("%s: start after close = %v, want ErrClosed", owner, err)
		}
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d after closing every session", m.Len())
	}
}
