package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/launchpad/internal/cache"
	"github.com/MrSnakeDoc/launchpad/internal/dictation"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/mutation"
	"github.com/MrSnakeDoc/launchpad/internal/ordering"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
	"github.com/MrSnakeDoc/launchpad/internal/syncer"
)

// Config tunes the sessions a Manager opens.
type Config struct {
	WriteTimeout       time.Duration
	CascadeConcurrency int
	Fallback           domain.CategoryRef
	Location           *time.Location
	Locale             language.Tag
	Icon               domain.IconResolver
	Now                func() time.Time
	NewID              func() string
}

// Manager is the registry of open sessions, one per owner.
type Manager struct {
	base   context.Context
	store  remote.Store
	order  *ordering.Engine
	logger logger.Logger
	cfg    Config

	opening singleflight.Group

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager. base bounds every session and remote write.
func NewManager(base context.Context, store remote.Store, order *ordering.Engine, log logger.Logger, cfg Config) *Manager {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Manager{
		base:     base,
		store:    store,
		order:    order,
		logger:   log,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Open returns the session of owner, creating it and its subscriptions on
// first use. Concurrent opens for one owner share a single creation. The
// subscriptions live until the session is closed, not for the caller's request.
func (m *Manager) Open(owner string) (*Session, error) {
	if owner == "" {
		return nil, domain.ErrUnauthenticated
	}
	if s, ok := m.Get(owner); ok {
		return s, nil
	}

	v, err, _ := m.opening.Do(owner, func() (any, error) {
		if s, ok := m.lookup(owner); ok {
			return s, nil
		}
		s, err := m.create(owner)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.sessions[owner] = s
		m.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	s := v.(*Session)
	s.Touch()
	return s, nil
}

func (m *Manager) create(owner string) (*Session, error) {
	log := m.logger.With(logger.String("owner", owner))
	sctx, cancel := context.WithCancel(m.base)

	s := &Session{
		Owner:     owner,
		Cache:     cache.New(),
		Banner:    &Banner{},
		Events:    NewBroadcaster(),
		cancel:    cancel,
		logger:    log,
		now:       m.cfg.Now,
		openedAt:  m.cfg.Now(),
		announced: make(map[string]bool),
	}
	s.Touch()

	s.Gateway = mutation.New(m.base, m.store, s.Cache, m.order, log, mutation.Options{
		Fallback:           m.cfg.Fallback,
		WriteTimeout:       m.cfg.WriteTimeout,
		Icon:               m.cfg.Icon,
		Location:           m.cfg.Location,
		CascadeConcurrency: m.cfg.CascadeConcurrency,
		Now:                m.cfg.Now,
		NewID:              m.cfg.NewID,
		OnRemoteError: func(err error) {
			state := s.Banner.Set(err.Error(), m.cfg.Now())
			s.Events.Publish(Event{Type: EventBanner, At: state.At, Data: state})
		},
	})
	s.Gateway.SetOwner(owner)

	s.Relay = dictation.NewRelay(m.cfg.Locale)
	s.Dictation = dictation.New(dictation.RelayFactory(s.Relay), log)
	s.Dictation.OnChange = func(snap dictation.Snapshot) {
		s.Events.Publish(Event{Type: EventDictation, At: m.cfg.Now(), Data: snap})
	}

	engine := syncer.New(m.store, s.Cache, log)
	engine.OnHealth = func(collection string, h syncer.Health, err error) {
		data := map[string]string{"collection": collection, "health": string(h)}
		if err != nil {
			data["error"] = err.Error()
		}
		s.Events.Publish(Event{Type: EventHealth, At: m.cfg.Now(), Data: data})
	}

	handle, err := engine.Subscribe(sctx, owner)
	if err != nil {
		cancel()
		return nil, err
	}
	s.handle = handle
	s.watch(sctx)

	log.Info("session opened")
	return s, nil
}

func (m *Manager) lookup(owner string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[owner]
	return s, ok
}

// Get returns an open session and records activity on it.
func (m *Manager) Get(owner string) (*Session, bool) {
	s, ok := m.lookup(owner)
	if ok {
		s.Touch()
	}
	return s, ok
}

// Close closes the session of owner. Closing an unknown owner is a no-op.
func (m *Manager) Close(ctx context.Context, owner string) error {
	m.mu.Lock()
	s, ok := m.sessions[owner]
	delete(m.sessions, owner)
	m.mu.Unlock()
	if !ok {
		return nil
	}

	err := s.Close(ctx)
	m.logger.Info("session closed", logger.String("owner", owner))
	if err != nil {
		return fmt.Errorf("close session %s: %w", owner, err)
	}
	return nil
}

// CloseAll closes every session, flushing pending writes within ctx.
func (m *Manager) CloseAll(ctx context.Context) error {
	var errs []error
	for _, owner := range m.Owners() {
		if err := m.Close(ctx, owner); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reap closes sessions idle since before cutoff and returns their owners.
func (m *Manager) Reap(ctx context.Context, cutoff time.Time) []string {
	var reaped []string
	for _, s := range m.List() {
		if !s.Idle(cutoff) {
			continue
		}
		if err := m.Close(ctx, s.Owner); err != nil {
			m.logger.Warn("failed to close idle session",
				logger.String("owner", s.Owner),
				logger.Error(err))
		}
		reaped = append(reaped, s.Owner)
	}
	return reaped
}

// List returns the open sessions ordered by owner.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Owner < out[j].Owner })
	return out
}

// Owners returns the owners of the open sessions, sorted.
func (m *Manager) Owners() []string {
	sessions := m.List()
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.Owner
	}
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
