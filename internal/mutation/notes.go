package mutation

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/launchpad/internal/cache"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
)

// SaveNote creates a note. Blank text is a silent no-op: (nil, nil).
func (g *Gateway) SaveNote(d domain.NoteDraft) (*domain.Note, error) {
	owner, err := g.requireOwner()
	if err != nil {
		return nil, err
	}

	n, err := domain.NewNote(d, g.opts.Now(), g.opts.Location)
	if errors.Is(err, domain.ErrEmptyInput) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	n.ID = g.opts.NewID()

	fields, err := remote.ToFields(n)
	if err != nil {
		return nil, err
	}
	fields["createdAt"] = remote.ServerTimestamp

	g.opMu.Lock()
	defer g.opMu.Unlock()

	path := remote.DocPath(owner, remote.Notes, n.ID)
	g.apply(Command{
		Op:     "save_note",
		Target: path.String(),
		Local:  func(c *cache.Cache) { c.PutNote(n) },
		Remote: func(ctx context.Context, store remote.Store) error {
			return store.Create(ctx, path, fields)
		},
	})

	cp := *n
	return &cp, nil
}

// DeleteNote removes a note. Confirmation is the caller's concern.
func (g *Gateway) DeleteNote(id string) error {
	owner, err := g.requireOwner()
	if err != nil {
		return err
	}

	g.opMu.Lock()
	defer g.opMu.Unlock()

	if _, ok := g.cache.Note(id); !ok {
		return fmt.Errorf("%w: note %s", domain.ErrNotFound, id)
	}

	path := remote.DocPath(owner, remote.Notes, id)
	g.apply(Command{
		Op:     "delete_note",
		Target: path.String(),
		Local:  func(c *cache.Cache) { c.DeleteNote(id) },
		Remote: func(ctx context.Context, store remote.Store) error {
			return store.Delete(ctx, path)
		},
	})
	return nil
}
