// Package cache holds the per-session mirror of the remote store.
//
// The cache is written by exactly two parties: the sync engine (snapshot
// replace) and the mutation gateway (optimistic apply). Everything else reads.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

// Cache is an in-memory mirror of one owner's profile, shortcuts, collections and notes.
type Cache struct {
	mu          sync.RWMutex
	profile     domain.Profile
	shortcuts   map[string]*domain.Shortcut   // ID -> Shortcut
	collections map[string]*domain.Collection // ID -> Collection
	notes       map[string]*domain.Note       // ID -> Note
	lastSync    map[string]time.Time          // collection -> last snapshot
	version     uint64

	watchMu  sync.Mutex
	watchers map[int]chan struct{}
	nextID   int
}

// New creates an empty cache holding the default profile.
func New() *Cache {
	return &Cache{
		profile:     domain.DefaultProfile(),
		shortcuts:   make(map[string]*domain.Shortcut),
		collections: make(map[string]*domain.Collection),
		notes:       make(map[string]*domain.Note),
		lastSync:    make(map[string]time.Time),
		watchers:    make(map[int]chan struct{}),
	}
}

// ─────────────────────────────────────────────────────────────────
// Snapshot replace (sync engine)
// ─────────────────────────────────────────────────────────────────

// ReplaceProfile installs the profile from a snapshot. A nil profile means the
// document does not exist yet and the defaults apply.
func (c *Cache) ReplaceProfile(p *domain.Profile, collection string) {
	c.mu.Lock()
	if p == nil {
		c.profile = domain.DefaultProfile()
	} else {
		c.profile = p.WithDefaults()
	}
	c.touchLocked(collection)
	c.mu.Unlock()
	c.notify()
}

// ReplaceShortcuts replaces all shortcuts with the snapshot content
func (c *Cache) ReplaceShortcuts(shortcuts []*domain.Shortcut, collection string) {
	c.mu.Lock()
	c.shortcuts = make(map[string]*domain.Shortcut, len(shortcuts))
	for _, s := range shortcuts {
		c.shortcuts[s.ID] = s.Clone()
	}
	c.touchLocked(collection)
	c.mu.Unlock()
	c.notify()
}

// ReplaceCollections replaces all collections with the snapshot content
func (c *Cache) ReplaceCollections(collections []*domain.Collection, collection string) {
	c.mu.Lock()
	c.collections = make(map[string]*domain.Collection, len(collections))
	for _, col := range collections {
		cp := *col
		c.collections[col.ID] = &cp
	}
	c.touchLocked(collection)
	c.mu.Unlock()
	c.notify()
}

// ReplaceNotes replaces all notes with the snapshot content
func (c *Cache) ReplaceNotes(notes []*domain.Note, collection string) {
	c.mu.Lock()
	c.notes = make(map[string]*domain.Note, len(notes))
	for _, n := range notes {
		c.notes[n.ID] = cloneNote(n)
	}
	c.touchLocked(collection)
	c.mu.Unlock()
	c.notify()
}

func (c *Cache) touchLocked(collection string) {
	c.version++
	if collection != "" {
		c.lastSync[collection] = time.Now()
	}
}

// LastSync returns when the collection last received a snapshot.
func (c *Cache) LastSync(collection string) time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSync[collection]
}

// Version increases on every change.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// ─────────────────────────────────────────────────────────────────
// Optimistic apply (mutation gateway)
// ─────────────────────────────────────────────────────────────────

// SetProfile overwrites the local profile.
func (c *Cache) SetProfile(p domain.Profile) {
	c.mu.Lock()
	c.profile = p
	c.version++
	c.mu.Unlock()
	c.notify()
}

// PutShortcut adds or replaces a single shortcut
func (c *Cache) PutShortcut(s *domain.Shortcut) {
	c.mu.Lock()
	c.shortcuts[s.ID] = s.Clone()
	c.version++
	c.mu.Unlock()
	c.notify()
}

// DeleteShortcut removes a shortcut and reports whether it existed
func (c *Cache) DeleteShortcut(id string) bool {
	c.mu.Lock()
	_, ok := c.shortcuts[id]
	delete(c.shortcuts, id)
	c.version++
	c.mu.Unlock()
	c.notify()
	return ok
}

// SetOrders rewrites the order of several shortcuts in one step.
func (c *Cache) SetOrders(orders map[string]int) {
	c.mu.Lock()
	for id, order := range orders {
		if s, ok := c.shortcuts[id]; ok {
			cp := s.Clone()
			cp.Order = order
			c.shortcuts[id] = cp
		}
	}
	c.version++
	c.mu.Unlock()
	c.notify()
}

// Recategorize points every shortcut in from at to and returns the moved
// shortcuts. Orders are left untouched.
func (c *Cache) Recategorize(from, to domain.CategoryRef) []*domain.Shortcut {
	c.mu.Lock()
	var moved []*domain.Shortcut
	for id, s := range c.shortcuts {
		if s.Category != from {
			continue
		}
		cp := s.Clone()
		cp.Category = to
		c.shortcuts[id] = cp
		moved = append(moved, cp.Clone())
	}
	c.version++
	c.mu.Unlock()
	c.notify()

	sort.Slice(moved, func(i, j int) bool { return moved[i].ID < moved[j].ID })
	return moved
}

// PutCollection adds or replaces a collection
func (c *Cache) PutCollection(col *domain.Collection) {
	c.mu.Lock()
	cp := *col
	c.collections[col.ID] = &cp
	c.version++
	c.mu.Unlock()
	c.notify()
}

// DeleteCollection removes a collection and reports whether it existed
func (c *Cache) DeleteCollection(id string) bool {
	c.mu.Lock()
	_, ok := c.collections[id]
	delete(c.collections, id)
	c.version++
	c.mu.Unlock()
	c.notify()
	return ok
}

// PutNote adds or replaces a note
func (c *Cache) PutNote(n *domain.Note) {
	c.mu.Lock()
	c.notes[n.ID] = cloneNote(n)
	c.version++
	c.mu.Unlock()
	c.notify()
}

// DeleteNote removes a note and reports whether it existed
func (c *Cache) DeleteNote(id string) bool {
	c.mu.Lock()
	_, ok := c.notes[id]
	delete(c.notes, id)
	c.version++
	c.mu.Unlock()
	c.notify()
	return ok
}

// ─────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────

func (c *Cache) Profile() domain.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

// Shortcut returns a copy of a shortcut by ID
func (c *Cache) Shortcut(id string) (*domain.Shortcut, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.shortcuts[id]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Shortcuts returns copies of all shortcuts, unordered
func (c *Cache) Shortcuts() []*domain.Shortcut {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*domain.Shortcut, 0, len(c.shortcuts))
	for _, s := range c.shortcuts {
		out = append(out, s.Clone())
	}
	return out
}

// ShortcutsIn returns copies of the shortcuts of one category, unordered
func (c *Cache) ShortcutsIn(ref domain.CategoryRef) []*domain.Shortcut {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*domain.Shortcut
	for _, s := range c.shortcuts {
		if s.Category == ref {
			out = append(out, s.Clone())
		}
	}
	return out
}

// CountIn returns the number of shortcuts in a category
func (c *Cache) CountIn(ref domain.CategoryRef) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, s := range c.shortcuts {
		if s.Category == ref {
			n++
		}
	}
	return n
}

func (c *Cache) Collection(id string) (*domain.Collection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	col, ok := c.collections[id]
	if !ok {
		return nil, false
	}
	cp := *col
	return &cp, true
}

// Collections returns copies of all collections, oldest first
func (c *Cache) Collections() []*domain.Collection {
	c.mu.RLock()
	out := make([]*domain.Collection, 0, len(c.collections))
	for _, col := range c.collections {
		cp := *col
		out = append(out, &cp)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return createdBefore(out[i].CreatedAt, out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (c *Cache) Note(id string) (*domain.Note, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.notes[id]
	if !ok {
		return nil, false
	}
	return cloneNote(n), true
}

// Notes returns copies of all notes, newest first
func (c *Cache) Notes() []*domain.Note {
	c.mu.RLock()
	out := make([]*domain.Note, 0, len(c.notes))
	for _, n := range c.notes {
		out = append(out, cloneNote(n))
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return createdBefore(out[j].CreatedAt, out[i].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// createdBefore orders timestamps with not-yet-confirmed (zero) values last.
func createdBefore(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	default:
		return a.Before(b)
	}
}

func cloneNote(n *domain.Note) *domain.Note {
	cp := *n
	cp.Tags = append([]string(nil), n.Tags...)
	if n.ReminderAt != nil {
		at := *n.ReminderAt
		cp.ReminderAt = &at
	}
	return &cp
}
