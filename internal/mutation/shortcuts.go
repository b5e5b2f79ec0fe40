package mutation

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/cache"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
)

// ShortcutDraft is the user input for a new shortcut.
type ShortcutDraft struct {
	Name     string
	URL      string
	Category domain.CategoryRef
	// Icon overrides the resolved default when set.
	Icon string
}

// CreateShortcut appends a shortcut at the end of its category.
func (g *Gateway) CreateShortcut(d ShortcutDraft) (*domain.Shortcut, error) {
	owner, err := g.requireOwner()
	if err != nil {
		return nil, err
	}

	name, err := domain.CleanName(d.Name)
	if err != nil {
		return nil, err
	}
	url, err := domain.NormalizeURL(d.URL)
	if err != nil {
		return nil, err
	}

	g.opMu.Lock()
	defer g.opMu.Unlock()

	if err := g.validateCategory(d.Category); err != nil {
		return nil, err
	}

	now := g.opts.Now()
	s := &domain.Shortcut{
		ID:        g.opts.NewID(),
		Name:      name,
		URL:       url,
		IconURL:   g.iconFor(d.Icon, url),
		Category:  d.Category,
		Order:     g.cache.CountIn(d.Category),
		CreatedAt: now,
		UpdatedAt: now,
	}

	fields, err := remote.ToFields(s)
	if err != nil {
		return nil, err
	}
	fields["createdAt"] = remote.ServerTimestamp
	fields["updatedAt"] = remote.ServerTimestamp

	path := remote.DocPath(owner, remote.Links, s.ID)
	g.apply(Command{
		Op:     "create_shortcut",
		Target: path.String(),
		Local:  func(c *cache.Cache) { c.PutShortcut(s) },
		Remote: func(ctx context.Context, store remote.Store) error {
			return store.Create(ctx, path, fields)
		},
	})

	return s.Clone(), nil
}

func (g *Gateway) iconFor(explicit, url string) string {
	if icon := strings.TrimSpace(explicit); icon != "" {
		return icon
	}
	if g.opts.Icon == nil {
		return ""
	}
	return g.opts.Icon(domain.Hostname(url))
}

// UpdateShortcut merges patch into a shortcut. Moving to another category
// without an explicit order appends at the end of the new category.
func (g *Gateway) UpdateShortcut(id string, patch domain.ShortcutPatch) (*domain.Shortcut, error) {
	owner, err := g.requireOwner()
	if err != nil {
		return nil, err
	}

	g.opMu.Lock()
	defer g.opMu.Unlock()
	return g.updateShortcutLocked(owner, id, patch)
}

// updateShortcutLocked requires opMu.
func (g *Gateway) updateShortcutLocked(owner, id string, patch domain.ShortcutPatch) (*domain.Shortcut, error) {
	current, ok := g.cache.Shortcut(id)
	if !ok {
		return nil, fmt.Errorf("%w: shortcut %s", domain.ErrNotFound, id)
	}
	if current.ReadOnly {
		return nil, fmt.Errorf("%w: shortcut %s is read-only", domain.ErrInvalidField, id)
	}
	if patch.IsEmpty() {
		return current, nil
	}

	next := current.Clone()
	fields := remote.Fields{}

	if patch.Name != nil {
		name, err := domain.CleanName(*patch.Name)
		if err != nil {
			return nil, err
		}
		next.Name = name
		fields["name"] = name
	}
	if patch.URL != nil {
		url, err := domain.NormalizeURL(*patch.URL)
		if err != nil {
			return nil, err
		}
		next.URL = url
		fields["url"] = url
	}
	if patch.IconURL != nil {
		next.IconURL = strings.TrimSpace(*patch.IconURL)
		fields["icon"] = next.IconURL
	}
	if patch.Pinned != nil {
		next.Pinned = *patch.Pinned
		fields["pinned"] = next.Pinned
	}
	if patch.Category != nil && *patch.Category != current.Category {
		if err := g.validateCategory(*patch.Category); err != nil {
			return nil, err
		}
		next.Category = *patch.Category
		fields["categoryId"] = next.Category.String()
		if patch.Order == nil {
			next.Order = g.cache.CountIn(next.Category)
			fields["order"] = next.Order
		}
	}
	if patch.Order != nil {
		next.Order = *patch.Order
		fields["order"] = next.Order
	}
	if len(fields) == 0 {
		return current, nil
	}

	next.UpdatedAt = g.opts.Now()
	fields["updatedAt"] = remote.ServerTimestamp

	path := remote.DocPath(owner, remote.Links, id)
	g.apply(Command{
		Op:     "update_shortcut",
		Target: path.String(),
		Local:  func(c *cache.Cache) { c.PutShortcut(next) },
		Remote: func(ctx context.Context, store remote.Store) error {
			return store.MergeWrite(ctx, path, fields)
		},
	})

	return next.Clone(), nil
}

// DeleteShortcut removes a shortcut. Confirmation is the caller's concern.
func (g *Gateway) DeleteShortcut(id string) error {
	owner, err := g.requireOwner()
	if err != nil {
		return err
	}

	g.opMu.Lock()
	defer g.opMu.Unlock()

	if _, ok := g.cache.Shortcut(id); !ok {
		return fmt.Errorf("%w: shortcut %s", domain.ErrNotFound, id)
	}

	path := remote.DocPath(owner, remote.Links, id)
	g.apply(Command{
		Op:     "delete_shortcut",
		Target: path.String(),
		Local:  func(c *cache.Cache) { c.DeleteShortcut(id) },
		Remote: func(ctx context.Context, store remote.Store) error {
			return store.Delete(ctx, path)
		},
	})
	return nil
}

// TogglePin flips the pinned flag. The read and the write happen under the
// same lock so concurrent toggles never collapse into one.
func (g *Gateway) TogglePin(id string) (*domain.Shortcut, error) {
	owner, err := g.requireOwner()
	if err != nil {
		return nil, err
	}

	g.opMu.Lock()
	defer g.opMu.Unlock()

	current, ok := g.cache.Shortcut(id)
	if !ok {
		return nil, fmt.Errorf("%w: shortcut %s", domain.ErrNotFound, id)
	}
	pinned := !current.Pinned
	return g.updateShortcutLocked(owner, id, domain.ShortcutPatch{Pinned: &pinned})
}
