package view

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/cache"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

// ExportFormat is the output of ExportNotes.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportText ExportFormat = "txt"
)

// ParseExportFormat defaults to JSON.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return ExportJSON, nil
	case ExportJSON, ExportText:
		return f, nil
	default:
		return "", fmt.Errorf("%w: export format %q", domain.ErrInvalidField, s)
	}
}

// Notes returns the notes newest first, keeping those whose text or tags
// contain query (case-insensitive).
func Notes(c *cache.Cache, query string) []*domain.Note {
	q := strings.ToLower(strings.TrimSpace(query))
	all := c.Notes()
	if q == "" {
		return all
	}
	out := all[:0]
	for _, n := range all {
		if n.Matches(q) {
			out = append(out, n)
		}
	}
	return out
}

// Reminders returns the notes whose reminder is due at now.
func Reminders(c *cache.Cache, now time.Time) []*domain.Note {
	var out []*domain.Note
	for _, n := range c.Notes() {
		if n.Overdue(now) {
			out = append(out, n)
		}
	}
	return out
}

// ExportNotes renders notes as indented JSON or one "- text (tags)" line each.
// It returns the body and its content type.
func ExportNotes(notes []*domain.Note, format ExportFormat) ([]byte, string, error) {
	switch format {
	case ExportText:
		lines := make([]string, len(notes))
		for i, n := range notes {
			tags := "sans tags"
			if len(n.Tags) > 0 {
				tags = strings.Join(n.Tags, ", ")
			}
			lines[i] = fmt.Sprintf("- %s (%s)", n.Text, tags)
		}
		return []byte(strings.Join(lines, "\n")), "text/plain; charset=utf-8", nil
	case ExportJSON:
		if notes == nil {
			notes = []*domain.Note{}
		}
		body, err := json.MarshalIndent(notes, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode notes: %w", err)
		}
		return body, "application/json", nil
	default:
		return nil, "", fmt.Errorf("%w: export format %q", domain.ErrInvalidField, format)
	}
}
