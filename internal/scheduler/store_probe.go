package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
)

// ProbeResult is the last observed reachability of the remote store
type ProbeResult struct {
	Reachable bool          `json:"reachable"`
	Latency   time.Duration `json:"latencyNs"`
	Error     string        `json:"error,omitempty"`
	CheckedAt time.Time     `json:"checkedAt"`
}

// StoreProbe pings the remote store periodically and keeps the last result
type StoreProbe struct {
	store    remote.Pinger
	logger   logger.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}

	mu   sync.RWMutex
	last ProbeResult
}

// NewStoreProbe creates a new store probe
func NewStoreProbe(
	store remote.Pinger,
	log logger.Logger,
	interval time.Duration,
	timeout time.Duration,
) *StoreProbe {
	return &StoreProbe{
		store:    store,
		logger:   log,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start probes immediately, then periodically
func (sp *StoreProbe) Start(ctx context.Context) error {
	sp.Probe(ctx)

	ticker := time.NewTicker(sp.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sp.Probe(ctx)
			case <-sp.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the probe
func (sp *StoreProbe) Stop() {
	close(sp.stopCh)
}

// Probe pings the store once and records the result
func (sp *StoreProbe) Probe(ctx context.Context) ProbeResult {
	pctx, cancel := context.WithTimeout(ctx, sp.timeout)
	defer cancel()

	start := time.Now()
	err := sp.store.Ping(pctx)
	res := ProbeResult{
		Reachable: err == nil,
		Latency:   time.Since(start),
		CheckedAt: start,
	}
	if err != nil {
		res.Error = err.Error()
	}

	sp.mu.Lock()
	prev := sp.last
	sp.last = res
	sp.mu.Unlock()

	switch {
	case err != nil && (prev.Reachable || prev.CheckedAt.IsZero()):
		sp.logger.Warn("remote store unreachable", logger.Error(err))
	case err == nil && !prev.Reachable && !prev.CheckedAt.IsZero():
		sp.logger.Info("remote store reachable again",
			logger.Duration("latency", res.Latency))
	}

	return res
}

// Last returns the most recent result
func (sp *StoreProbe) Last() ProbeResult {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.last
}
