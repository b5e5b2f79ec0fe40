// Package view builds the read models served to the UI from a session cache
// and the built-in catalog.
package view

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/cache"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/ordering"
)

// Catalog is the subset of the built-in catalog the views read.
type Catalog interface {
	Apps(tag string) []*domain.Shortcut
	AllApps() []*domain.Shortcut
	Label(tag string) string
}

// SortMode selects how the "all" view is laid out.
type SortMode string

const (
	SortCategory SortMode = "category"
	SortAZ       SortMode = "az"
	SortZA       SortMode = "za"
)

// ParseSortMode maps "" to SortCategory and rejects unknown values.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SortCategory, nil
	case SortCategory, SortAZ, SortZA:
		return m, nil
	default:
		return "", fmt.Errorf("%w: sort %q", domain.ErrInvalidField, s)
	}
}

// Group is the shortcuts of one category with its display label.
type Group struct {
	Category  string             `json:"category"`
	Label     string             `json:"label"`
	Shortcuts []*domain.Shortcut `json:"shortcuts"`
}

// Builder assembles views. It holds no per-user state.
type Builder struct {
	order   *ordering.Engine
	catalog Catalog
}

func New(order *ordering.Engine, catalog Catalog) *Builder {
	return &Builder{order: order, catalog: catalog}
}

// Category returns the user shortcuts of ref in default order followed by the
// catalog entries of a fixed category. filter keeps names containing it.
func (b *Builder) Category(c *cache.Cache, ref domain.CategoryRef, filter string) (*Group, error) {
	g := &Group{Category: ref.String()}

	switch {
	case ref.IsFolder():
		col, ok := c.Collection(ref.FolderID())
		if !ok {
			return nil, fmt.Errorf("%w: collection %s", domain.ErrNotFound, ref.FolderID())
		}
		g.Label = col.Name
	case domain.IsFixedCategory(ref.Tag()):
		g.Label = b.catalog.Label(ref.Tag())
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, ref.String())
	}

	items := b.order.Sorted(c.ShortcutsIn(ref))
	if !ref.IsFolder() {
		items = append(items, b.catalog.Apps(ref.Tag())...)
	}
	g.Shortcuts = filterByName(items, filter)
	return g, nil
}

// All lists every user and catalog shortcut. SortCategory groups them per
// fixed category then per collection, oldest collection first; SortAZ and
// SortZA return a single group sorted by name.
func (b *Builder) All(c *cache.Cache, mode SortMode) []*Group {
	if mode == SortAZ || mode == SortZA {
		items := append(c.Shortcuts(), b.catalog.AllApps()...)
		b.order.SortByName(items, mode == SortZA)
		return []*Group{{Category: "all", Label: "all", Shortcuts: items}}
	}

	var groups []*Group
	for _, tag := range domain.FixedCategories {
		g, _ := b.Category(c, domain.Fixed(tag), "")
		if len(g.Shortcuts) > 0 {
			groups = append(groups, g)
		}
	}
	for _, col := range c.Collections() {
		g, err := b.Category(c, col.Ref(), "")
		if err == nil && len(g.Shortcuts) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// Search ranks user and catalog shortcuts by name.
func (b *Builder) Search(c *cache.Cache, query string) []*domain.ShortcutMatch {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	items := append(c.Shortcuts(), b.catalog.AllApps()...)
	b.order.SortByName(items, false)
	return domain.RankShortcuts(query, items, domain.SearchLimit)
}

func filterByName(items []*domain.Shortcut, filter string) []*domain.Shortcut {
	q := strings.ToLower(strings.TrimSpace(filter))
	if q == "" {
		return items
	}
	out := items[:0:0]
	for _, s := range items {
		if strings.Contains(strings.ToLower(s.Name), q) {
			out = append(out, s)
		}
	}
	return out
}
