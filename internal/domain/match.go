package domain

import (
	"sort"
	"strings"
)

// SearchLimit caps the number of search results returned to the UI.
const SearchLimit = 8

const (
	// Match weights
	matchExact     = 100.0
	matchPrefix    = 75.0
	matchSubstring = 50.0

	// Position bonus (earlier is better)
	matchPositionBonus = 10.0
)

// ShortcutMatch is a shortcut with its match score.
type ShortcutMatch struct {
	Shortcut *Shortcut
	Score    float64
}

// ScoreName scores a shortcut name against a query.
// Exact beats prefix beats substring; no match scores 0.
func ScoreName(query, name string) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	name = strings.ToLower(name)
	if query == "" || name == "" {
		return 0.0
	}

	if query == name {
		return matchExact
	}
	if strings.HasPrefix(name, query) {
		return matchPrefix
	}
	if idx := strings.Index(name, query); idx >= 0 {
		return matchSubstring + matchPositionBonus*(1.0-float64(idx)/float64(len(name)))
	}
	return 0.0
}

// RankShortcuts returns up to limit shortcuts matching query, best first.
// Equal scores keep the input order.
func RankShortcuts(query string, shortcuts []*Shortcut, limit int) []*ShortcutMatch {
	matches := make([]*ShortcutMatch, 0, len(shortcuts))
	for _, s := range shortcuts {
		score := ScoreName(query, s.Name)
		if score == 0.0 {
			continue
		}
		matches = append(matches, &ShortcutMatch{Shortcut: s, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
