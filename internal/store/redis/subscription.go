package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
	"github.com/redis/go-redis/v9"
)

type subscription struct {
	ps     *redis.PubSub
	ch     chan remote.Snapshot
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) Snapshots() <-chan remote.Snapshot { return s.ch }

// Close stops the stream and waits for the reader goroutine.
func (s *subscription) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}

// Subscribe streams full snapshots of p's collection: one on subscribe, then one
// per change notification. Reconnection is left to go-redis.
func (s *Store) Subscribe(ctx context.Context, p remote.Path) (remote.Subscription, error) {
	if err := p.Validate(false); err != nil {
		return nil, err
	}
	p = p.CollectionOnly()

	ps := s.client.Subscribe(ctx, ChannelKey(p))
	// Wait for confirmation so no write between here and the first load is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe %s: %w", p, err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		ps:     ps,
		ch:     make(chan remote.Snapshot, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go s.pump(loopCtx, p, sub)
	return sub, nil
}

func (s *Store) pump(ctx context.Context, p remote.Path, sub *subscription) {
	defer close(sub.done)
	defer close(sub.ch)
	defer func() { _ = sub.ps.Close() }()

	messages := sub.ps.Channel()
	s.publish(ctx, p, sub)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-messages:
			if !ok {
				return
			}
			s.publish(ctx, p, sub)
		}
	}
}

func (s *Store) publish(ctx context.Context, p remote.Path, sub *subscription) {
	docs, err := s.load(ctx, p)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Warn("snapshot load failed",
			logger.String("path", p.String()),
			logger.Error(err))
		remote.Offer(sub.ch, remote.Snapshot{Collection: p.Collection, Err: err})
		return
	}
	remote.Offer(sub.ch, remote.Snapshot{Collection: p.Collection, Docs: docs})
}
