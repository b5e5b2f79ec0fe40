package session

import "testing"

func TestBroadcaster(t *testing.T) {
	b := NewBroadcaster()
	a, cancelA := b.Listen()
	c, cancelC := b.Listen()
	defer cancelC()

	b.Publish(Event{Type: EventState})
	if ev := <-a; ev.Type != EventState || ev.At.IsZero() {
		t.Errorf("a got %+v", ev)
	}
	if ev := <-c; ev.Type != EventState {
		t.Errorf("c got %+v", ev)
	}

	cancelA()
	cancelA()
	if _, ok := <-a; ok {
		t.Error("cancelled listener still open")
	}
	if b.Listeners() != 1 {
		t.Errorf("Listeners() = %d", b.Listeners())
	}
}

func TestBroadcasterDropsForSlowListener(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Listen()
	defer cancel()

	for i := 0; i < listenerBuffer*2; i++ {
		b.Publish(Event{Type: EventReminder})
	}
	if len(ch) != listenerBuffer {
		t.Errorf("buffered = %d, want %d", len(ch), listenerBuffer)
	}
}

func TestBroadcasterClose(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Listen()
	b.Close()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("listener open after Close")
	}

	late, _ := b.Listen()
	if _, ok := <-late; ok {
		t.Error("Listen after Close returned an open channel")
	}
	b.Publish(Event{Type: EventState})
}
