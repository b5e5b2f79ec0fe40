// Package dictation routes one shared speech-capture session to either the
// query box or the note composer.
package dictation

import (
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

// State of the controller.
type State string

const (
	Idle      State = "idle"
	Listening State = "listening"
)

// Target is the text buffer receiving transcripts.
type Target string

const (
	TargetQuery Target = "query"
	TargetNote  Target = "note"
)

func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case TargetQuery, TargetNote:
		return t, nil
	default:
		return "", fmt.Errorf("%w: dictation target %q", domain.ErrInvalidField, s)
	}
}

// Snapshot is the observable controller state.
type Snapshot struct {
	State  State  `json:"state"`
	Target Target `json:"target,omitempty"`
	Query  string `json:"query"`
	Note   string `json:"note"`
}

// Controller is the dictation state machine. The recognizer is created lazily
// on first start and never recreated.
type Controller struct {
	factory Factory
	logger  logger.Logger

	once   sync.Once
	rec    Recognizer
	recErr error

	// quit stops listen; listened is closed once listen has returned.
	quit      chan struct{}
	listened  chan struct{}
	closeOnce sync.Once

	mu        sync.Mutex
	state     State
	target    Target
	buffers   map[Target]string
	observers int
	closed    bool

	// OnChange receives every state or buffer change, outside the lock.
	OnChange func(Snapshot)
}

func New(factory Factory, log logger.Logger) *Controller {
	if factory == nil {
		factory = Unavailable
	}
	return &Controller{
		factory:  factory,
		logger:   log,
		state:    Idle,
		buffers:  map[Target]string{TargetQuery: "", TargetNote: ""},
		quit:     make(chan struct{}),
		listened: make(chan struct{}),
	}
}

func (c *Controller) recognizer() (Recognizer, error) {
	c.once.Do(func() {
		c.rec, c.recErr = c.factory()
		if c.recErr != nil {
			c.logger.Warn("speech capture unavailable", logger.Error(c.recErr))
			close(c.listened)
			return
		}
		go c.listen(c.rec)
	})
	return c.rec, c.recErr
}

// Start begins capture into target. When already listening it stops instead,
// whatever target is passed. Capture only starts while at least one observer
// is registered.
func (c *Controller) Start(target Target) (Snapshot, error) {
	if _, err := ParseTarget(string(target)); err != nil {
		return c.Snapshot(), err
	}

	c.mu.Lock()
	if c.state == Listening {
		snap := c.stopLocked()
		c.mu.Unlock()
		c.changed(snap)
		return snap, nil
	}
	if c.closed {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrClosed
	}
	if c.observers == 0 {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrNoObserver
	}
	c.mu.Unlock()

	rec, err := c.recognizer()
	if err != nil {
		return c.Snapshot(), err
	}

	c.mu.Lock()
	if c.observers == 0 {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrNoObserver
	}
	if err := rec.Start(); err != nil {
		c.mu.Unlock()
		return c.Snapshot(), fmt.Errorf("start capture: %w", err)
	}
	c.state = Listening
	c.target = target
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug("dictation started", logger.String("target", string(target)))
	c.changed(snap)
	return snap, nil
}

// Retarget redirects subsequent results to target without interrupting capture.
func (c *Controller) Retarget(target Target) (Snapshot, error) {
	if _, err := ParseTarget(string(target)); err != nil {
		return c.Snapshot(), err
	}
	c.mu.Lock()
	c.target = target
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.changed(snap)
	return snap, nil
}

// Stop ends capture. Stopping an idle controller is a no-op.
func (c *Controller) Stop() Snapshot {
	c.mu.Lock()
	if c.state != Listening {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap
	}
	snap := c.stopLocked()
	c.mu.Unlock()
	c.changed(snap)
	return snap
}

func (c *Controller) stopLocked() Snapshot {
	if c.rec != nil {
		if err := c.rec.Stop(); err != nil {
			c.logger.Warn("stop capture failed", logger.Error(err))
		}
	}
	c.state = Idle
	c.logger.Debug("dictation stopped")
	return c.snapshotLocked()
}

// SetBuffer replaces a buffer with typed text.
func (c *Controller) SetBuffer(target Target, text string) error {
	if _, err := ParseTarget(string(target)); err != nil {
		return err
	}
	c.mu.Lock()
	c.buffers[target] = text
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.changed(snap)
	return nil
}

// Buffer returns the current text of target.
func (c *Controller) Buffer(target Target) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffers[target]
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State: c.state,
		Query: c.buffers[TargetQuery],
		Note:  c.buffers[TargetNote],
	}
	if c.state == Listening {
		s.Target = c.target
	}
	return s
}

// Observe registers a transcript reader. When the last reader releases while
// capture is running, capture stops so the microphone is never live unobserved.
func (c *Controller) Observe() (release func()) {
	c.mu.Lock()
	c.observers++
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.observers--
			if c.observers > 0 || c.state != Listening {
				c.mu.Unlock()
				return
			}
			snap := c.stopLocked()
			c.mu.Unlock()
			c.logger.Info("dictation stopped, no observer left")
			c.changed(snap)
		})
	}
}

// Observers returns the number of registered readers.
func (c *Controller) Observers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.observers
}

// Close stops capture for good, waits for the event loop to exit and releases
// the recognizer. Later starts fail with ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.Stop()
	c.closeOnce.Do(func() {
		c.once.Do(func() {
			c.recErr = ErrClosed
			close(c.listened)
		})
		close(c.quit)
		<-c.listened
		if c.rec == nil {
			return
		}
		if err := c.rec.Close(); err != nil {
			c.logger.Warn("close recognizer failed", logger.Error(err))
		}
	})
}

// listen resynchronizes state from recognizer events until Close.
func (c *Controller) listen(rec Recognizer) {
	defer close(c.listened)
	events := rec.Events()
	for {
		var ev Event
		select {
		case <-c.quit:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			ev = e
		}

		c.mu.Lock()
		var snap Snapshot
		changed := false
		switch ev.Kind {
		case EventResult:
			if c.state == Listening {
				c.buffers[c.target] = ev.Transcript
				changed = true
			}
		case EventEnd:
			if c.state == Listening {
				c.state = Idle
				changed = true
			}
		}
		if changed {
			snap = c.snapshotLocked()
		}
		c.mu.Unlock()
		if changed {
			c.changed(snap)
		}
	}
}

func (c *Controller) changed(s Snapshot) {
	if c.OnChange != nil {
		c.OnChange(s)
	}
}
