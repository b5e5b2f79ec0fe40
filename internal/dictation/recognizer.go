package dictation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"golang.org/x/text/language"
)

// EventKind distinguishes recognizer events.
type EventKind int

const (
	// EventResult carries the full transcript of the current utterance so far.
	EventResult EventKind = iota
	// EventEnd reports that the capture session ended, for whatever reason.
	EventEnd
)

type Event struct {
	Kind       EventKind
	Transcript string
}

// Recognizer is a continuous speech-capture capability.
// Start and Stop must not block on event delivery. After Close no further
// events are delivered.
type Recognizer interface {
	Start() error
	Stop() error
	Close() error
	Events() <-chan Event
}

// Factory creates the recognizer. It is called at most once per controller.
type Factory func() (Recognizer, error)

// Unavailable is the factory for hosts without speech capture.
func Unavailable() (Recognizer, error) {
	return nil, fmt.Errorf("%w: speech capture", domain.ErrUnsupported)
}

var (
	// ErrNotListening rejects relayed input while no capture is running.
	ErrNotListening = errors.New("dictation is not listening")

	// ErrNoObserver refuses to start capture that nobody would read.
	ErrNoObserver = errors.New("dictation has no observer")

	// ErrClosed is returned by a controller after Close.
	ErrClosed = errors.New("dictation is closed")
)

// Relay is a recognizer whose audio lives on the device: the device posts its
// results and end events, the controller owns the state machine.
type Relay struct {
	locale language.Tag

	mu     sync.Mutex
	active bool
	closed bool

	events chan Event
	done   chan struct{}
}

// NewRelay builds a relay recognizing in locale.
func NewRelay(locale language.Tag) *Relay {
	return &Relay{
		locale: locale,
		events: make(chan Event, 32),
		done:   make(chan struct{}),
	}
}

// RelayFactory returns a Factory handing out r.
func RelayFactory(r *Relay) Factory {
	return func() (Recognizer, error) { return r, nil }
}

func (r *Relay) Locale() language.Tag { return r.locale }

func (r *Relay) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.active = true
	return nil
}

func (r *Relay) Stop() error {
	r.mu.Lock()
	r.active = false
	r.mu.Unlock()
	return nil
}

// Close releases the relay. Pending and later pushes fail with ErrNotListening.
func (r *Relay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.active = false
	close(r.done)
	return nil
}

func (r *Relay) Events() <-chan Event { return r.events }

// Push relays a cumulative transcript from the device. The send happens
// outside the lock: a full channel never blocks Start or Stop.
func (r *Relay) Push(transcript string) error {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return ErrNotListening
	}
	r.mu.Unlock()
	return r.send(Event{Kind: EventResult, Transcript: transcript})
}

// End relays the device-side end of capture (silence, permission revoked, ...).
// Ending an inactive relay does nothing.
func (r *Relay) End() {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}
	r.active = false
	r.mu.Unlock()
	_ = r.send(Event{Kind: EventEnd})
}

func (r *Relay) send(ev Event) error {
	select {
	case r.events <- ev:
		return nil
	case <-r.done:
		return ErrNotListening
	}
}
