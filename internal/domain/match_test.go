package domain

import (
	"fmt"
	"testing"
)

func TestScoreName(t *testing.T) {
	tests := []struct {
		query string
		name  string
		want  string // exact, prefix, substring, none
	}{
		{"netflix", "Netflix", "exact"},
		{"net", "Netflix", "prefix"},
		{"flix", "Netflix", "substring"},
		{"spotify", "Netflix", "none"},
		{"", "Netflix", "none"},
	}

	for _, tt := range tests {
		got := ScoreName(tt.query, tt.name)
		switch tt.want {
		case "exact":
			if got != matchExact {
				t.Errorf("ScoreName(%q, %q) = %v, want exact", tt.query, tt.name, got)
			}
		case "prefix":
			if got != matchPrefix {
				t.Errorf("ScoreName(%q, %q) = %v, want prefix", tt.query, tt.name, got)
			}
		case "substring":
			if got < matchSubstring || got >= matchPrefix {
				t.Errorf("ScoreName(%q, %q) = %v, want substring range", tt.query, tt.name, got)
			}
		case "none":
			if got != 0 {
				t.Errorf("ScoreName(%q, %q) = %v, want 0", tt.query, tt.name, got)
			}
		}
	}
}

func TestRankShortcuts(t *testing.T) {
	shortcuts := []*Shortcut{
		{ID: "1", Name: "Prime Video"},
		{ID: "2", Name: "Video"},
		{ID: "3", Name: "Videoland"},
	}

	got := RankShortcuts("video", shortcuts, SearchLimit)
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(got))
	}
	order := []string{got[0].Shortcut.ID, got[1].Shortcut.ID, got[2].Shortcut.ID}
	want := []string{"2", "3", "1"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("rank order = %v, want %v", order, want)
		}
	}
}

func TestRankShortcutsLimit(t *testing.T) {
	var shortcuts []*Shortcut
	for i := 0; i < 20; i++ {
		shortcuts = append(shortcuts, &Shortcut{ID: fmt.Sprint(i), Name: fmt.Sprintf("app %d", i)})
	}
	if got := RankShortcuts("app", shortcuts, SearchLimit); len(got) != SearchLimit {
		t.Errorf("expected %d results, got %d", SearchLimit, len(got))
	}
}
