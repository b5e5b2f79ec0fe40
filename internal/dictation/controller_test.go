package dictation

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"golang.org/x/text/language"
)

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// newRelayController returns a controller with one registered observer.
func newRelayController() (*Controller, *Relay) {
	relay := NewRelay(language.French)
	c := New(RelayFactory(relay), logger.NewNop())
	c.Observe()
	return c, relay
}

func TestStartToggles(t *testing.T) {
	c, _ := newRelayController()

	snap, err := c.Start(TargetQuery)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if snap.State != Listening || snap.Target != TargetQuery {
		t.Fatalf("snapshot = %+v", snap)
	}

	// A second start is a stop, whatever the target.
	snap, err = c.Start(TargetNote)
	if err != nil {
		t.Fatal(err)
	}
	if snap.State != Idle || c.State() != Idle {
		t.Errorf("expected idle after toggle, got %+v", snap)
	}
}

func TestResultsOverwriteActiveTarget(t *testing.T) {
	c, relay := newRelayController()
	_ = c.SetBuffer(TargetQuery, "typed query")

	if _, err := c.Start(TargetNote); err != nil {
		t.Fatal(err)
	}
	if err := relay.Push("acheter"); err != nil {
		t.Fatal(err)
	}
	if err := relay.Push("acheter du pain"); err != nil {
		t.Fatal(err)
	}
	eventually(t, "note transcript", func() bool { return c.Buffer(TargetNote) == "acheter du pain" })

	if got := c.Buffer(TargetQuery); got != "typed query" {
		t.Errorf("query buffer mutated by note dictation: %q", got)
	}

	if _, err := c.Retarget(TargetQuery); err != nil {
		t.Fatal(err)
	}
	_ = relay.Push("météo demain")
	eventually(t, "query transcript", func() bool { return c.Buffer(TargetQuery) == "météo demain" })
	if got := c.Buffer(TargetNote); got != "acheter du pain" {
		t.Errorf("note buffer mutated after retarget: %q", got)
	}
}

func TestEndEventResyncsState(t *testing.T) {
	c, relay := newRelayController()
	var changes atomic.Int32
	c.OnChange = func(Snapshot) { changes.Add(1) }

	if _, err := c.Start(TargetQuery); err != nil {
		t.Fatal(err)
	}
	relay.End()
	eventually(t, "idle", func() bool { return c.State() == Idle })

	if changes.Load() < 2 {
		t.Errorf("expected start and end changes, got %d", changes.Load())
	}
	if err := relay.Push("late"); !errors.Is(err, ErrNotListening) {
		t.Errorf("push after end: %v", err)
	}

	// Start works again on the same recognizer.
	if snap, err := c.Start(TargetNote); err != nil || snap.State != Listening {
		t.Errorf("restart: %+v, %v", snap, err)
	}
}

func TestRecognizerCreatedOnce(t *testing.T) {
	relay := NewRelay(language.French)
	var calls atomic.Int32
	c := New(func() (Recognizer, error) {
		calls.Add(1)
		return relay, nil
	}, logger.NewNop())
	c.Observe()

	for i := 0; i < 3; i++ {
		_, _ = c.Start(TargetQuery)
		c.Stop()
	}
	if calls.Load() != 1 {
		t.Errorf("factory called %d times", calls.Load())
	}
}

func TestUnsupported(t *testing.T) {
	c := New(Unavailable, logger.NewNop())
	c.Observe()
	if _, err := c.Start(TargetQuery); !errors.Is(err, domain.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if c.State() != Idle {
		t.Errorf("state = %s", c.State())
	}
}

func TestLastObserverStopsCapture(t *testing.T) {
	c := New(RelayFactory(NewRelay(language.French)), logger.NewNop())

	releaseA := c.Observe()
	releaseB := c.Observe()
	if _, err := c.Start(TargetQuery); err != nil {
		t.Fatal(err)
	}

	releaseA()
	releaseA()
	if c.State() != Listening {
		t.Fatal("capture stopped while an observer remains")
	}
	releaseB()
	if c.State() != Idle {
		t.Error("capture must stop when no observer is left")
	}
	if c.Observers() != 0 {
		t.Errorf("Observers() = %d", c.Observers())
	}
}

func TestInvalidTarget(t *testing.T) {
	c, _ := newRelayController()
	if _, err := c.Start(Target("ai")); !errors.Is(err, domain.ErrInvalidField) {
		t.Errorf("expected ErrInvalidField, got %v", err)
	}
}

func TestStartRequiresObserver(t *testing.T) {
	tests := []struct {
		name      string
		observers int
		want      error
		wantState State
	}{
		{name: "no observer", observers: 0, want: ErrNoObserver, wantState: Idle},
		{name: "one observer", observers: 1, want: nil, wantState: Listening},
		{name: "two observers", observers: 2, want: nil, wantState: Listening},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relay := NewRelay(language.French)
			c := New(RelayFactory(relay), logger.NewNop())
			for i := 0; i < tt.observers; i++ {
				c.Observe()
			}

			snap, err := c.Start(TargetNote)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Start() error = %v, want %v", err, tt.want)
			}
			if snap.State != tt.wantState || c.State() != tt.wantState {
				t.Errorf("state = %s, want %s", c.State(), tt.wantState)
			}
			if tt.want != nil {
				if err := relay.Push("unread"); !errors.Is(err, ErrNotListening) {
					t.Errorf("relay accepted input without an observer: %v", err)
				}
			}
		})
	}
}

func TestCloseEndsEventLoop(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *Controller, relay *Relay)
	}{
		{name: "never started", setup: func(*Controller, *Relay) {}},
		{name: "listening", setup: func(c *Controller, _ *Relay) {
			_, _ = c.Start(TargetQuery)
		}},
		{name: "stopped", setup: func(c *Controller, _ *Relay) {
			_, _ = c.Start(TargetQuery)
			c.Stop()
		}},
		{name: "ended by device", setup: func(c *Controller, relay *Relay) {
			_, _ = c.Start(TargetQuery)
			relay.End()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, relay := newRelayController()
			tt.setup(c, relay)

			closed := make(chan struct{})
			go func() {
				c.Close()
				close(closed)
			}()
			select {
			case <-closed:
			case <-time.After(time.Second):
				t.Fatal("Close() did not return")
			}

			select {
			case <-c.listened:
			default:
				t.Fatal("event loop still running after Close")
			}
			if c.State() != Idle {
				t.Errorf("state = %s after Close", c.State())
			}
			if err := relay.Push("late"); !errors.Is(err, ErrNotListening) {
				t.Errorf("push after Close: %v", err)
			}
			if _, err := c.Start(TargetNote); !errors.Is(err, ErrClosed) {
				t.Errorf("Start() after Close error = %v, want ErrClosed", err)
			}
			c.Close()
		})
	}
}

func TestStopDuringResultBurst(t *testing.T) {
	c, relay := newRelayController()
	if _, err := c.Start(TargetNote); err != nil {
		t.Fatal(err)
	}

	// Hold the controller lock so the event loop cannot drain while the
	// device overfills the channel, then stop as soon as it is released.
	c.mu.Lock()
	var pushers sync.WaitGroup
	for i := 0; i < 2*cap(relay.events); i++ {
		i := i
		pushers.Add(1)
		go func() {
			defer pushers.Done()
			_ = relay.Push(fmt.Sprintf("mot %d", i))
		}()
	}
	eventually(t, "full event channel", func() bool { return len(relay.events) == cap(relay.events) })

	stopped := make(chan struct{})
	go func() {
		snap := c.stopLocked()
		c.mu.Unlock()
		c.changed(snap)
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop blocked behind pending results")
	}

	done := make(chan struct{})
	go func() {
		pushers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pushers still blocked after stop")
	}
	if c.State() != Idle {
		t.Errorf("state = %s", c.State())
	}
	c.Close()
}
