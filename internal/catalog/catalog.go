// Package catalog serves the process-wide, read-only table of built-in
// shortcuts and AI providers.
package catalog

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/launch"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

// Snapshot is one immutable version of the catalog.
type Snapshot struct {
	apps          map[string][]*domain.Shortcut
	labels        map[string]string
	providers     map[string]launch.Provider
	providerOrder []string
	loadedAt      time.Time
}

// Catalog swaps snapshots atomically so readers never see a partial reload.
type Catalog struct {
	loader *Loader
	mapper *Mapper
	logger logger.Logger
	cur    atomic.Pointer[Snapshot]
}

// New loads the catalog once. A broken override file is an error at startup.
func New(loader *Loader, mapper *Mapper, log logger.Logger) (*Catalog, error) {
	c := &Catalog{loader: loader, mapper: mapper, logger: log}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the source. On failure the previous snapshot stays active.
func (c *Catalog) Reload() error {
	f, err := c.loader.Load()
	if err != nil {
		return err
	}
	snap, warnings, err := c.mapper.Map(f)
	if err != nil {
		return fmt.Errorf("invalid catalog %s: %w", c.loader.Source(), err)
	}
	for _, w := range warnings {
		c.logger.Warn("catalog entry skipped", logger.String("entry", w))
	}

	snap.loadedAt = time.Now()
	c.cur.Store(snap)

	c.logger.Info("catalog loaded",
		logger.String("source", c.loader.Source()),
		logger.Int("apps", snap.count()),
		logger.Int("providers", len(snap.providers)))
	return nil
}

func (c *Catalog) snapshot() *Snapshot { return c.cur.Load() }

// Apps returns the built-in shortcuts of a fixed category, in catalog order.
func (c *Catalog) Apps(tag string) []*domain.Shortcut {
	src := c.snapshot().apps[tag]
	out := make([]*domain.Shortcut, len(src))
	for i, s := range src {
		out[i] = s.Clone()
	}
	return out
}

// App looks up a built-in shortcut by id.
func (c *Catalog) App(id string) (*domain.Shortcut, bool) {
	for _, apps := range c.snapshot().apps {
		for _, s := range apps {
			if s.ID == id {
				return s.Clone(), true
			}
		}
	}
	return nil, false
}

// AllApps returns every built-in shortcut.
func (c *Catalog) AllApps() []*domain.Shortcut {
	var out []*domain.Shortcut
	for _, tag := range domain.FixedCategories {
		out = append(out, c.Apps(tag)...)
	}
	return out
}

// Label returns the display label of a fixed category, or the tag itself.
func (c *Catalog) Label(tag string) string {
	if l, ok := c.snapshot().labels[tag]; ok {
		return l
	}
	return tag
}

// Provider looks up an AI provider by id.
func (c *Catalog) Provider(id string) (launch.Provider, bool) {
	p, ok := c.snapshot().providers[id]
	return p, ok
}

// Providers returns every provider in catalog order.
func (c *Catalog) Providers() []launch.Provider {
	snap := c.snapshot()
	out := make([]launch.Provider, 0, len(snap.providerOrder))
	for _, id := range snap.providerOrder {
		out = append(out, snap.providers[id])
	}
	return out
}

// LoadedAt returns when the active snapshot was installed.
func (c *Catalog) LoadedAt() time.Time { return c.snapshot().loadedAt }

// Count returns the number of built-in shortcuts.
func (c *Catalog) Count() int { return c.snapshot().count() }

func (s *Snapshot) count() int {
	n := 0
	for _, apps := range s.apps {
		n += len(apps)
	}
	return n
}
