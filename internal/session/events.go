package session

import (
	"sync"
	"time"
)

// EventType names what changed.
type EventType string

const (
	EventState     EventType = "state"
	EventDictation EventType = "dictation"
	EventReminder  EventType = "reminder"
	EventHealth    EventType = "health"
	EventBanner    EventType = "banner"
)

// Event is pushed to every listener of a session.
type Event struct {
	Type EventType `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data,omitempty"`
}

// Broadcaster fans events out to listeners. A listener that falls behind loses
// events instead of blocking the publisher.
type Broadcaster struct {
	mu        sync.Mutex
	listeners map[int]chan Event
	next      int
	closed    bool
}

const listenerBuffer = 16

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[int]chan Event)}
}

// Listen registers a listener. The channel is closed by cancel or Close.
func (b *Broadcaster) Listen() (<-chan Event, func()) {
	ch := make(chan Event, listenerBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.listeners[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			if c, ok := b.listeners[id]; ok {
				delete(b.listeners, id)
				close(c)
			}
			b.mu.Unlock()
		})
	}
}

// Publish delivers ev to every listener without blocking.
func (b *Broadcaster) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Listeners returns the number of registered listeners.
func (b *Broadcaster) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Close closes every listener channel. Later Listen calls get a closed channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.listeners {
		delete(b.listeners, id)
		close(ch)
	}
}
