package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNewNote(t *testing.T) {
	now := time.Date(2026, 3, 7, 9, 5, 30, 0, time.UTC)

	t.Run("blank text", func(t *testing.T) {
		n, err := NewNote(NoteDraft{Text: "  \n\t"}, now, time.UTC)
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("expected ErrEmptyInput, got %v", err)
		}
		if n != nil {
			t.Fatalf("expected nil note, got %+v", n)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		n, err := NewNote(NoteDraft{Text: "  recharger la voiture  ", Tags: []string{"auto", " ", "auto", "Maison"}}, now, time.UTC)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.Text != "recharger la voiture" {
			t.Errorf("text = %q", n.Text)
		}
		if n.Date != "07/03/2026 09:05:30" {
			t.Errorf("date = %q", n.Date)
		}
		if n.Color != NoteColors[0] {
			t.Errorf("color = %q, want %q", n.Color, NoteColors[0])
		}
		if !reflect.DeepEqual(n.Tags, []string{"Maison", "auto"}) {
			t.Errorf("tags = %v", n.Tags)
		}
		if !n.CreatedAt.IsZero() {
			t.Errorf("createdAt must be left to the store, got %v", n.CreatedAt)
		}
	})
}

func TestNoteOverdueAndMatches(t *testing.T) {
	now := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	n := &Note{Text: "Appeler le garage", Tags: []string{"Auto"}, ReminderAt: &past}
	if !n.Overdue(now) {
		t.Errorf("expected overdue")
	}
	n.ReminderAt = &future
	if n.Overdue(now) {
		t.Errorf("expected not overdue")
	}
	n.ReminderAt = nil
	if n.Overdue(now) {
		t.Errorf("note without reminder is never overdue")
	}

	for q, want := range map[string]bool{"garage": true, "auto": true, "velo": false, "": true} {
		if got := n.Matches(q); got != want {
			t.Errorf("Matches(%q) = %v, want %v", q, got, want)
		}
	}
}

func TestSplitTags(t *testing.T) {
	got := SplitTags("courses, maison,,courses ")
	if !reflect.DeepEqual(got, []string{"courses", "maison"}) {
		t.Errorf("SplitTags() = %v", got)
	}
}
