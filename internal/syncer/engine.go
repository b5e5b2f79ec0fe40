// Package syncer mirrors one owner's remote collections into a cache.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/cache"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
)

// Engine opens subscriptions for a cache.
type Engine struct {
	store  remote.Store
	cache  *cache.Cache
	logger logger.Logger

	// OnHealth is called whenever a collection changes health.
	OnHealth func(collection string, h Health, err error)
}

// New creates a sync engine writing into c.
func New(store remote.Store, c *cache.Cache, log logger.Logger) *Engine {
	return &Engine{
		store:  store,
		cache:  c,
		logger: log,
	}
}

// Handle owns the live subscriptions of one Subscribe call.
type Handle struct {
	owner   string
	subs    []remote.Subscription
	wg      sync.WaitGroup
	once    sync.Once
	closing atomic.Bool

	mu       sync.RWMutex
	statuses map[string]*Status
	first    map[string]chan struct{}
}

// Subscribe opens one subscription per collection for owner. If any of them
// cannot be opened, the ones already opened are closed before returning.
func (e *Engine) Subscribe(ctx context.Context, owner string) (*Handle, error) {
	if owner == "" {
		return nil, domain.ErrUnauthenticated
	}

	h := &Handle{
		owner:    owner,
		statuses: make(map[string]*Status, len(remote.AllCollections)),
		first:    make(map[string]chan struct{}, len(remote.AllCollections)),
	}
	for _, coll := range remote.AllCollections {
		h.statuses[coll] = &Status{Collection: coll, Health: HealthConnecting}
		h.first[coll] = make(chan struct{})
	}

	for _, coll := range remote.AllCollections {
		sub, err := e.store.Subscribe(ctx, remote.CollectionPath(owner, coll))
		if err != nil {
			for _, opened := range h.subs {
				_ = opened.Close()
			}
			e.logger.Error("subscription failed",
				logger.String("owner", owner),
				logger.String("collection", coll),
				logger.Error(err))
			return nil, fmt.Errorf("%w: subscribe %s: %w", domain.ErrRemoteUnavailable, coll, err)
		}
		h.subs = append(h.subs, sub)
	}

	for i, coll := range remote.AllCollections {
		h.wg.Add(1)
		go e.pump(h, coll, h.subs[i])
	}

	e.logger.Info("subscriptions opened",
		logger.String("owner", owner),
		logger.Int("collections", len(h.subs)))
	return h, nil
}

// Unsubscribe releases every subscription and waits for the pumps to exit.
// Safe to call more than once.
func (h *Handle) Unsubscribe() error {
	var errs []error
	h.once.Do(func() {
		h.closing.Store(true)
		for _, sub := range h.subs {
			if err := sub.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		h.wg.Wait()
	})
	return errors.Join(errs...)
}

func (h *Handle) Owner() string { return h.owner }

// Statuses returns one status per collection in subscription order.
func (h *Handle) Statuses() []Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Status, 0, len(remote.AllCollections))
	for _, coll := range remote.AllCollections {
		out = append(out, *h.statuses[coll])
	}
	return out
}

// Health returns the folded health of all collections.
func (h *Handle) Health() Health {
	return Overall(h.Statuses())
}

// Ready blocks until every collection has delivered a first snapshot or error.
func (h *Handle) Ready(ctx context.Context) error {
	for _, coll := range remote.AllCollections {
		select {
		case <-h.first[coll]:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (h *Handle) record(coll string, health Health, err error) (changed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := h.statuses[coll]
	changed = st.Health != health
	st.Health = health
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
		st.LastSnapshot = time.Now()
		st.Snapshots++
	}

	select {
	case <-h.first[coll]:
	default:
		close(h.first[coll])
	}
	return changed
}

func (e *Engine) pump(h *Handle, coll string, sub remote.Subscription) {
	defer h.wg.Done()

	for snap := range sub.Snapshots() {
		if snap.Err != nil {
			// Keep last-known-good data.
			e.setHealth(h, coll, HealthDegraded, snap.Err)
			continue
		}
		e.apply(coll, snap.Docs)
		e.setHealth(h, coll, HealthOK, nil)
	}

	if !h.closing.Load() {
		e.setHealth(h, coll, HealthDegraded, errors.New("subscription stream closed"))
	}
}

func (e *Engine) setHealth(h *Handle, coll string, health Health, err error) {
	if !h.record(coll, health, err) {
		return
	}
	if health == HealthDegraded {
		e.logger.Warn("sync degraded",
			logger.String("owner", h.owner),
			logger.String("collection", coll),
			logger.Error(err))
	} else {
		e.logger.Debug("sync health changed",
			logger.String("owner", h.owner),
			logger.String("collection", coll),
			logger.String("health", string(health)))
	}
	if e.OnHealth != nil {
		e.OnHealth(coll, health, err)
	}
}
