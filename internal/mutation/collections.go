package mutation

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/launchpad/internal/cache"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
	"golang.org/x/sync/errgroup"
)

// CreateCollection adds a user folder.
func (g *Gateway) CreateCollection(name string) (*domain.Collection, error) {
	owner, err := g.requireOwner()
	if err != nil {
		return nil, err
	}
	name, err = domain.CleanName(name)
	if err != nil {
		return nil, err
	}

	g.opMu.Lock()
	defer g.opMu.Unlock()

	col := &domain.Collection{ID: g.opts.NewID(), Name: name, CreatedAt: g.opts.Now()}
	path := remote.DocPath(owner, remote.Collections, col.ID)
	fields := remote.Fields{"name": name, "createdAt": remote.ServerTimestamp}

	g.apply(Command{
		Op:     "create_collection",
		Target: path.String(),
		Local:  func(c *cache.Cache) { c.PutCollection(col) },
		Remote: func(ctx context.Context, store remote.Store) error {
			return store.Create(ctx, path, fields)
		},
	})

	cp := *col
	return &cp, nil
}

// DeleteCollection migrates every member shortcut to the fallback category and
// then deletes the collection.
//
// Remotely the member writes run concurrently and act as a barrier: the
// collection document is deleted only once every migration write succeeded, so
// the store never holds a shortcut pointing at a missing collection. On partial
// failure the collection is kept and the error is reported.
func (g *Gateway) DeleteCollection(id string) (int, error) {
	owner, err := g.requireOwner()
	if err != nil {
		return 0, err
	}

	g.opMu.Lock()
	defer g.opMu.Unlock()

	col, ok := g.cache.Collection(id)
	if !ok {
		return 0, fmt.Errorf("%w: collection %s", domain.ErrNotFound, id)
	}

	fallback := g.opts.Fallback
	var moved []*domain.Shortcut
	path := remote.DocPath(owner, remote.Collections, col.ID)

	g.apply(Command{
		Op:     "delete_collection",
		Target: path.String(),
		Local: func(c *cache.Cache) {
			moved = c.Recategorize(col.Ref(), fallback)
			c.DeleteCollection(col.ID)
		},
		Remote: func(ctx context.Context, store remote.Store) error {
			grp, gctx := errgroup.WithContext(ctx)
			grp.SetLimit(g.opts.CascadeConcurrency)
			for _, s := range moved {
				linkPath := remote.DocPath(owner, remote.Links, s.ID)
				grp.Go(func() error {
					return store.MergeWrite(gctx, linkPath, remote.Fields{
						"categoryId": fallback.String(),
						"updatedAt":  remote.ServerTimestamp,
					})
				})
			}
			if err := grp.Wait(); err != nil {
				g.log.Warn("collection kept, member migration incomplete",
					logger.String("collection", col.ID),
					logger.Int("members", len(moved)),
					logger.Error(err))
				return fmt.Errorf("migrate members of %s: %w", col.ID, err)
			}
			return store.Delete(ctx, path)
		},
	})

	return len(moved), nil
}
