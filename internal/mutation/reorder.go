package mutation

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/launchpad/internal/cache"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/ordering"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
	"golang.org/x/sync/errgroup"
)

// Reorder moves movingID immediately before targetID within their shared
// category and persists each changed order individually. A partial remote
// failure leaves the cache consistent; the next snapshot repairs the store view.
func (g *Gateway) Reorder(movingID, targetID string) ([]ordering.Change, error) {
	owner, err := g.requireOwner()
	if err != nil {
		return nil, err
	}

	g.opMu.Lock()
	defer g.opMu.Unlock()

	moving, ok := g.cache.Shortcut(movingID)
	if !ok {
		return nil, fmt.Errorf("%w: shortcut %s", domain.ErrNotFound, movingID)
	}
	target, ok := g.cache.Shortcut(targetID)
	if !ok {
		return nil, fmt.Errorf("%w: shortcut %s", domain.ErrNotFound, targetID)
	}
	if moving.Category != target.Category {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrCrossCategory, moving.Category, target.Category)
	}

	changes, err := g.order.Move(g.cache.ShortcutsIn(moving.Category), movingID, targetID)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, nil
	}

	orders := make(map[string]int, len(changes))
	for _, c := range changes {
		orders[c.ID] = c.Order
	}

	g.apply(Command{
		Op:     "reorder",
		Target: moving.Category.String(),
		Local:  func(c *cache.Cache) { c.SetOrders(orders) },
		Remote: func(ctx context.Context, store remote.Store) error {
			// Writes are independent: one failure does not cancel the others.
			var grp errgroup.Group
			grp.SetLimit(g.opts.CascadeConcurrency)
			for _, c := range changes {
				path := remote.DocPath(owner, remote.Links, c.ID)
				order := c.Order
				grp.Go(func() error {
					return store.MergeWrite(ctx, path, remote.Fields{"order": order})
				})
			}
			return grp.Wait()
		},
	})

	return changes, nil
}
