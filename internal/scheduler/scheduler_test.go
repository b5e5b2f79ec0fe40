package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/ordering"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
	"github.com/MrSnakeDoc/launchpad/internal/remote/memory"
	"github.com/MrSnakeDoc/launchpad/internal/session"
)

type fakeReaper struct {
	mu      sync.Mutex
	cutoffs []time.Time
	result  []string
}

func (f *fakeReaper) Reap(_ context.Context, cutoff time.Time) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.result
}

func TestSessionReaper_Collect(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	fake := &fakeReaper{result: []string{"a", "b"}}

	sr := NewSessionReaper(fake, logger.NewNop(), time.Hour, 0)
	sr.now = func() time.Time { return now }

	if got := sr.Collect(context.Background()); got != 2 {
		t.Errorf("Collect() = %d, want 2", got)
	}
	if want := now.Add(-DefaultSessionIdleTTL); !fake.cutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", fake.cutoffs[0], want)
	}
}

type countingReloader struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingReloader) Reload() error {
	c.calls.Add(1)
	if c.fail {
		return errors.New("broken file")
	}
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCatalogReloader_ManualTrigger(t *testing.T) {
	for _, fail := range []bool{false, true} {
		rel := &countingReloader{fail: fail}
		trigger := make(chan struct{}, 1)

		cr := NewCatalogReloader(rel, logger.NewNop(), 0, trigger)
		if err := cr.Start(context.Background()); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if rel.calls.Load() != 0 {
			t.Errorf("Start() reloaded immediately")
		}

		trigger <- struct{}{}
		waitFor(t, func() bool { return rel.calls.Load() == 1 })

		trigger <- struct{}{}
		waitFor(t, func() bool { return rel.calls.Load() == 2 })
		cr.Stop()
	}
}

func TestCatalogReloader_Periodic(t *testing.T) {
	rel := &countingReloader{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cr := NewCatalogReloader(rel, logger.NewNop(), 10*time.Millisecond, make(chan struct{}))
	if err := cr.Start(ctx); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return rel.calls.Load() >= 2 })
}

func TestReminderScanner_Scan(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	store := memory.New()
	mgr := session.NewManager(context.Background(), store, ordering.New(language.French), logger.NewNop(), session.Config{
		Location: time.UTC,
		Now:      func() time.Time { return now },
	})
	defer func() { _ = mgr.CloseAll(context.Background()) }()

	s, err := mgr.Open("owner-1")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Ready(ctx); err != nil {
		t.Fatal(err)
	}

	events, stop := s.Events.Listen()
	defer stop()

	past := now.Add(-time.Minute)
	s.Cache.ReplaceNotes([]*domain.Note{{ID: "n1", Text: "call", ReminderAt: &past}}, remote.Notes)

	rs := NewReminderScanner(mgr, logger.NewNop(), time.Minute)
	rs.now = func() time.Time { return now }

	if got := rs.Scan(); got != 1 {
		t.Fatalf("Scan() = %d, want 1", got)
	}
	if got := rs.Scan(); got != 0 {
		t.Fatalf("second Scan() = %d, want 0", got)
	}

	for {
		select {
		case ev := <-events:
			if ev.Type != session.EventReminder {
				continue
			}
			if n, ok := ev.Data.(*domain.Note); !ok || n.ID != "n1" {
				t.Fatalf("reminder data = %#v", ev.Data)
			}
			return
		case <-ctx.Done():
			t.Fatal("no reminder event")
		}
	}
}

type fakePinger struct {
	err atomic.Pointer[error]
}

func (f *fakePinger) Ping(context.Context) error {
	if p := f.err.Load(); p != nil {
		return *p
	}
	return nil
}

func TestStoreProbe(t *testing.T) {
	p := &fakePinger{}
	sp := NewStoreProbe(p, logger.NewNop(), time.Hour, time.Second)

	if res := sp.Probe(context.Background()); !res.Reachable {
		t.Fatalf("Probe() = %+v", res)
	}

	down := errors.New("connection refused")
	p.err.Store(&down)
	res := sp.Probe(context.Background())
	if res.Reachable || res.Error != "connection refused" {
		t.Fatalf("Probe() = %+v", res)
	}
	if last := sp.Last(); last.Reachable || last.CheckedAt.IsZero() {
		t.Errorf("Last() = %+v", last)
	}
}
