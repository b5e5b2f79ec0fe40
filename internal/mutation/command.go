package mutation

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/cache"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
)

// Command is a two-phase mutation. Local runs synchronously against the cache;
// Remote runs afterwards in its own goroutine and never touches the cache.
type Command struct {
	Op     string
	Target string
	Local  func(c *cache.Cache)
	Remote func(ctx context.Context, store remote.Store) error
}

// RemoteError reports a failed remote phase. It matches both
// domain.ErrRemoteUnavailable and the underlying cause with errors.Is.
type RemoteError struct {
	Op     string
	Target string
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Target, domain.ErrRemoteUnavailable, e.Err)
}

func (e *RemoteError) Unwrap() []error { return []error{domain.ErrRemoteUnavailable, e.Err} }

// apply runs the local phase and schedules the remote phase.
func (g *Gateway) apply(cmd Command) {
	if cmd.Local != nil {
		cmd.Local(g.cache)
	}
	if cmd.Remote == nil {
		return
	}

	g.begin()
	go func() {
		defer g.end()

		ctx, cancel := context.WithTimeout(g.base, g.opts.WriteTimeout)
		defer cancel()

		start := time.Now()
		err := cmd.Remote(ctx, g.store)
		if err == nil {
			g.log.Debug("remote write applied",
				logger.String("op", cmd.Op),
				logger.String("target", cmd.Target),
				logger.Duration("elapsed", time.Since(start)))
			return
		}

		rerr := &RemoteError{Op: cmd.Op, Target: cmd.Target, Err: err}
		g.log.Warn("remote write failed",
			logger.String("op", cmd.Op),
			logger.String("target", cmd.Target),
			logger.Error(err))
		if g.opts.OnRemoteError != nil {
			g.opts.OnRemoteError(rerr)
		}
	}()
}

// Flush waits until every scheduled remote phase has finished or ctx is done.
func (g *Gateway) Flush(ctx context.Context) error {
	g.flightMu.Lock()
	if g.inflight == 0 {
		g.flightMu.Unlock()
		return nil
	}
	idle := g.idle
	g.flightMu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of remote phases still in flight.
func (g *Gateway) Pending() int64 {
	g.flightMu.Lock()
	defer g.flightMu.Unlock()
	return int64(g.inflight)
}

// begin counts a remote phase. Leaving zero opens a fresh idle channel.
func (g *Gateway) begin() {
	g.flightMu.Lock()
	if g.inflight == 0 {
		g.idle = make(chan struct{})
	}
	g.inflight++
	g.flightMu.Unlock()
}

// end releases every Flush waiting on the current idle channel once the
// count drops back to zero.
func (g *Gateway) end() {
	g.flightMu.Lock()
	g.inflight--
	if g.inflight == 0 {
		close(g.idle)
	}
	g.flightMu.Unlock()
}
