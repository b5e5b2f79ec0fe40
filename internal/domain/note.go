package domain

import (
	"sort"
	"strings"
	"time"
)

// NoteDateLayout renders the display date the way the dashboard shows it (dd/mm/yyyy hh:mm:ss).
const NoteDateLayout = "02/01/2006 15:04:05"

// NoteColors is the sticky-note palette; the first entry is the default.
var NoteColors = []string{"#FEF3C7", "#DBEAFE", "#DCFCE7", "#FCE7F3", "#EDE9FE"}

// Note is a free-text memo.
type Note struct {
	ID    string   `json:"id,omitempty"`
	Text  string   `json:"text"`
	Date  string   `json:"date"`
	Color string   `json:"color"`
	Tags  []string `json:"tags"`

	ReminderAt *time.Time `json:"reminderAt"`

	// CreatedAt is server-assigned and distinct from the display Date.
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// NoteDraft carries the user input for a new note.
type NoteDraft struct {
	Text       string
	Tags       []string
	ReminderAt *time.Time
	Color      string
}

// NewNote validates a draft. Blank text yields ErrEmptyInput.
func NewNote(d NoteDraft, now time.Time, loc *time.Location) (*Note, error) {
	text := strings.TrimSpace(d.Text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	color := d.Color
	if !hexColor.MatchString(color) {
		color = NoteColors[0]
	}
	if loc == nil {
		loc = time.Local
	}
	return &Note{
		Text:       text,
		Date:       now.In(loc).Format(NoteDateLayout),
		Color:      color,
		Tags:       CleanTags(d.Tags),
		ReminderAt: d.ReminderAt,
	}, nil
}

// CleanTags trims, drops blanks and duplicates, and sorts.
func CleanTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SplitTags parses the comma separated form used by the note composer.
func SplitTags(s string) []string {
	return CleanTags(strings.Split(s, ","))
}

// Overdue reports whether the note has a reminder at or before now.
func (n *Note) Overdue(now time.Time) bool {
	return n.ReminderAt != nil && !n.ReminderAt.After(now)
}

// Matches reports whether q (already lowercased) appears in the text or any tag.
func (n *Note) Matches(q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(n.Text), q) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}
