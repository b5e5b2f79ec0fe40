package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

// Reloadable is a source that can be re-read in place
type Reloadable interface {
	Reload() error
}

// CatalogReloader handles periodic and manual reloading of the built-in catalog
type CatalogReloader struct {
	catalog       Reloadable
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewCatalogReloader creates a new catalog reloader. A zero interval only
// reloads on manual trigger.
func NewCatalogReloader(
	catalog Reloadable,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		catalog:       catalog,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the reload loop. The catalog is already loaded at construction,
// so nothing runs immediately.
func (cr *CatalogReloader) Start(ctx context.Context) error {
	var tick <-chan time.Time
	var ticker *time.Ticker
	if cr.interval > 0 {
		ticker = time.NewTicker(cr.interval)
		tick = ticker.C
	}

	go func() {
		if ticker != nil {
			defer ticker.Stop()
		}
		for {
			select {
			case <-tick:
				cr.reload()
			case <-cr.manualTrigger:
				cr.logger.Info("manual catalog reload triggered")
				cr.reload()
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (cr *CatalogReloader) Stop() {
	close(cr.stopCh)
}

func (cr *CatalogReloader) reload() {
	if err := cr.catalog.Reload(); err != nil {
		// Previous catalog stays active
		cr.logger.Error("failed to reload catalog",
			logger.Error(err))
	}
}
