// Package ordering sorts the shortcuts of a category and computes reorders.
package ordering

import (
	"fmt"
	"sort"
	"sync"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Change is one shortcut whose order must be persisted.
type Change struct {
	ID    string
	Order int
}

// Engine sorts with a locale-aware name tiebreak.
// collate.Collator is not safe for concurrent use, hence the mutex.
type Engine struct {
	mu       sync.Mutex
	collator *collate.Collator
}

// New builds an engine collating names for tag.
func New(tag language.Tag) *Engine {
	return &Engine{collator: collate.New(tag, collate.IgnoreCase, collate.Loose)}
}

// Sort orders items in place: pinned first, then ascending order, then name,
// then creation time, then id.
func (e *Engine) Sort(items []*domain.Shortcut) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if c := e.collator.CompareString(a.Name, b.Name); c != 0 {
			return c < 0
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Sorted returns a sorted copy of the slice header.
func (e *Engine) Sorted(items []*domain.Shortcut) []*domain.Shortcut {
	out := append([]*domain.Shortcut(nil), items...)
	e.Sort(out)
	return out
}

// SortByName orders items by collated name only, descending when desc is set.
func (e *Engine) SortByName(items []*domain.Shortcut, desc bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sort.SliceStable(items, func(i, j int) bool {
		c := e.collator.CompareString(items[i].Name, items[j].Name)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// Move removes movingID from the category list and reinserts it immediately
// before targetID, then reindexes every item to its position. Only items whose
// order actually changed are returned. items must all belong to one category.
func (e *Engine) Move(items []*domain.Shortcut, movingID, targetID string) ([]Change, error) {
	if movingID == targetID {
		return nil, nil
	}

	list := e.Sorted(items)

	from, to := -1, -1
	for i, s := range list {
		switch s.ID {
		case movingID:
			from = i
		case targetID:
			to = i
		}
	}
	if from < 0 {
		return nil, fmt.Errorf("%w: shortcut %s", domain.ErrNotFound, movingID)
	}
	if to < 0 {
		return nil, fmt.Errorf("%w: target %s is not in %s", domain.ErrCrossCategory, targetID, list[from].Category)
	}

	moving := list[from]
	rest := make([]*domain.Shortcut, 0, len(list))
	rest = append(rest, list[:from]...)
	rest = append(rest, list[from+1:]...)

	at := 0
	for i, s := range rest {
		if s.ID == targetID {
			at = i
			break
		}
	}

	reordered := make([]*domain.Shortcut, 0, len(list))
	reordered = append(reordered, rest[:at]...)
	reordered = append(reordered, moving)
	reordered = append(reordered, rest[at:]...)

	var changes []Change
	for i, s := range reordered {
		if s.Order != i {
			changes = append(changes, Change{ID: s.ID, Order: i})
		}
	}
	return changes, nil
}
