// Package memory is an in-process remote.Store. It backs local-only mode and
// stands in for the real store in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/remote"
)

// Op is one write applied (or rejected) by the store, in call order.
type Op struct {
	Kind string // create, merge, delete
	Path remote.Path
	Err  error
}

// Store keeps every collection in memory and fans snapshots out to subscribers.
type Store struct {
	mu     sync.Mutex
	now    func() time.Time
	docs   map[string]map[string]remote.Fields // collection path -> id -> fields
	subs   map[string]map[*subscription]struct{}
	faults map[string]error // path string -> injected write error
	ops    []Op
}

// New returns an empty store using time.Now as the server clock.
func New() *Store {
	return NewWithClock(time.Now)
}

func NewWithClock(now func() time.Time) *Store {
	return &Store{
		now:    now,
		docs:   make(map[string]map[string]remote.Fields),
		subs:   make(map[string]map[*subscription]struct{}),
		faults: make(map[string]error),
	}
}

type subscription struct {
	store *Store
	key   string
	ch    chan remote.Snapshot
	once  sync.Once
	stop  func() bool
}

func (s *subscription) Snapshots() <-chan remote.Snapshot { return s.ch }

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.store.mu.Lock()
		stop := s.stop
		delete(s.store.subs[s.key], s)
		close(s.ch)
		s.store.mu.Unlock()
		if stop != nil {
			stop()
		}
	})
	return nil
}

func (m *Store) Subscribe(ctx context.Context, p remote.Path) (remote.Subscription, error) {
	if err := p.Validate(false); err != nil {
		return nil, err
	}
	key := p.CollectionOnly().String()

	m.mu.Lock()
	if err := m.faults["subscribe:"+key]; err != nil {
		m.mu.Unlock()
		return nil, err
	}
	sub := &subscription{store: m, key: key, ch: make(chan remote.Snapshot, 1)}
	if m.subs[key] == nil {
		m.subs[key] = make(map[*subscription]struct{})
	}
	m.subs[key][sub] = struct{}{}
	remote.Offer(sub.ch, m.snapshotLocked(p.Collection, key))
	sub.stop = context.AfterFunc(ctx, func() { _ = sub.Close() })
	m.mu.Unlock()

	return sub, nil
}

func (m *Store) Create(ctx context.Context, p remote.Path, fields remote.Fields) error {
	return m.write(ctx, "create", p, func(cur remote.Fields, exists bool) (remote.Fields, bool) {
		return fields.Resolve(m.now()), true
	})
}

// MergeWrite overlays fields onto the document, creating it when absent.
func (m *Store) MergeWrite(ctx context.Context, p remote.Path, fields remote.Fields) error {
	return m.write(ctx, "merge", p, func(cur remote.Fields, exists bool) (remote.Fields, bool) {
		return remote.Merge(cur, fields.Resolve(m.now())), true
	})
}

func (m *Store) Delete(ctx context.Context, p remote.Path) error {
	return m.write(ctx, "delete", p, func(remote.Fields, bool) (remote.Fields, bool) {
		return nil, false
	})
}

func (m *Store) write(ctx context.Context, kind string, p remote.Path, apply func(cur remote.Fields, exists bool) (remote.Fields, bool)) error {
	if err := p.Validate(true); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := p.CollectionOnly().String()
	if err := m.fault(p); err != nil {
		m.ops = append(m.ops, Op{Kind: kind, Path: p, Err: err})
		return err
	}

	coll := m.docs[key]
	if coll == nil {
		coll = make(map[string]remote.Fields)
		m.docs[key] = coll
	}
	cur, exists := coll[p.ID]
	next, keep := apply(cur, exists)
	if keep {
		coll[p.ID] = next
	} else {
		delete(coll, p.ID)
	}
	m.ops = append(m.ops, Op{Kind: kind, Path: p})
	m.broadcastLocked(p.Collection, key)
	return nil
}

func (m *Store) fault(p remote.Path) error {
	if err := m.faults[p.String()]; err != nil {
		return err
	}
	return m.faults[p.CollectionOnly().String()]
}

func (m *Store) snapshotLocked(collection, key string) remote.Snapshot {
	coll := m.docs[key]
	docs := make([]remote.Document, 0, len(coll))
	for id, f := range coll {
		docs = append(docs, remote.Document{ID: id, Fields: remote.Merge(nil, f)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return remote.Snapshot{Collection: collection, Docs: docs}
}

func (m *Store) broadcastLocked(collection, key string) {
	if len(m.subs[key]) == 0 {
		return
	}
	snap := m.snapshotLocked(collection, key)
	for sub := range m.subs[key] {
		remote.Offer(sub.ch, snap)
	}
}

// FailWrites makes writes to p fail with err. A collection path matches every
// document in it. A nil err clears the fault.
func (m *Store) FailWrites(p remote.Path, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, p.String())
		return
	}
	m.faults[p.String()] = err
}

// FailSubscribe makes new subscriptions to p's collection fail with err.
func (m *Store) FailSubscribe(p remote.Path, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := "subscribe:" + p.CollectionOnly().String()
	if err == nil {
		delete(m.faults, key)
		return
	}
	m.faults[key] = err
}

// BreakStream pushes an error snapshot to every live subscriber of p's collection.
func (m *Store) BreakStream(p remote.Path, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sub := range m.subs[p.CollectionOnly().String()] {
		remote.Offer(sub.ch, remote.Snapshot{Collection: p.Collection, Err: err})
	}
}

// Get returns a copy of a stored document.
func (m *Store) Get(p remote.Path) (remote.Fields, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.docs[p.CollectionOnly().String()][p.ID]
	if !ok {
		return nil, false
	}
	return remote.Merge(nil, f), true
}

// Len returns the number of documents in p's collection.
func (m *Store) Len(p remote.Path) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs[p.CollectionOnly().String()])
}

// Ops returns the write log.
func (m *Store) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Op(nil), m.ops...)
}

// Subscribers returns the number of live subscriptions across all collections.
func (m *Store) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.subs {
		n += len(s)
	}
	return n
}

func (m *Store) Ping(context.Context) error { return nil }

func (m *Store) String() string { return fmt.Sprintf("memory(%d collections)", len(m.docs)) }
