// Package mutation is the only write path into a session's state.
//
// Every operation applies its change to the cache first, then issues the
// matching remote write asynchronously. A failed remote write is reported but
// not rolled back: the next snapshot corrects the cache.
package mutation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/cache"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/ordering"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
	"github.com/google/uuid"
)

// Options tunes a Gateway. Zero values get defaults in New.
type Options struct {
	// Fallback receives the shortcuts of a deleted collection.
	Fallback domain.CategoryRef

	// WriteTimeout bounds each remote phase.
	WriteTimeout time.Duration

	// Icon resolves a default icon from a hostname. Nil leaves icons empty.
	Icon domain.IconResolver

	// Location renders note display dates.
	Location *time.Location

	// CascadeConcurrency bounds parallel writes in cascades and reorders.
	CascadeConcurrency int

	Now   func() time.Time
	NewID func() string

	// OnRemoteError is called from the remote goroutine when a write fails.
	OnRemoteError func(err error)
}

// Gateway applies mutations for one owner.
type Gateway struct {
	store remote.Store
	cache *cache.Cache
	order *ordering.Engine
	log   logger.Logger
	opts  Options
	base  context.Context

	// opMu serializes local phases so count-then-append is consistent.
	opMu sync.Mutex

	ownerMu sync.RWMutex
	owner   string

	// flightMu guards inflight and idle. idle is closed when inflight
	// returns to zero.
	flightMu sync.Mutex
	inflight int
	idle     chan struct{}
}

// New creates a gateway. base scopes every remote phase; cancelling it aborts
// in-flight writes.
func New(base context.Context, store remote.Store, c *cache.Cache, order *ordering.Engine, log logger.Logger, opts Options) *Gateway {
	if opts.Fallback.IsZero() {
		opts.Fallback = domain.Fixed(domain.CategoryPersonal)
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.CascadeConcurrency <= 0 {
		opts.CascadeConcurrency = 8
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Gateway{
		store: store,
		cache: c,
		order: order,
		log:   log,
		opts:  opts,
		base:  base,
	}
}

// SetOwner binds the gateway to an identity. Until then only profile edits work.
func (g *Gateway) SetOwner(owner string) {
	g.ownerMu.Lock()
	g.owner = owner
	g.ownerMu.Unlock()
}

func (g *Gateway) Owner() string {
	g.ownerMu.RLock()
	defer g.ownerMu.RUnlock()
	return g.owner
}

func (g *Gateway) requireOwner() (string, error) {
	owner := g.Owner()
	if owner == "" {
		return "", domain.ErrUnauthenticated
	}
	return owner, nil
}

// validateCategory accepts fixed tags and folders present in the cache.
func (g *Gateway) validateCategory(ref domain.CategoryRef) error {
	switch {
	case ref.IsZero():
		return fmt.Errorf("%w: category is required", domain.ErrUnknownCategory)
	case ref.IsFolder():
		if _, ok := g.cache.Collection(ref.FolderID()); !ok {
			return fmt.Errorf("%w: collection %s does not exist", domain.ErrUnknownCategory, ref.FolderID())
		}
	default:
		if !domain.IsFixedCategory(ref.Tag()) {
			return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, ref.Tag())
		}
	}
	return nil
}
