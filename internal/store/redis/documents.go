package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/remote"
	"github.com/redis/go-redis/v9"
)

// maxMergeRetries bounds optimistic-lock retries when a document is written concurrently.
const maxMergeRetries = 5

// Store is a remote.Store backed by Redis.
// Each document is a JSON value, each collection has an id set and a change channel.
type Store struct {
	client *redis.Client
	log    logger.Logger
	now    func() time.Time
}

// NewStore creates a new Redis document store
func NewStore(client *redis.Client, log logger.Logger) *Store {
	return &Store{
		client: client,
		log:    log,
		now:    time.Now,
	}
}

var _ remote.Store = (*Store)(nil)

// Create stores a document, replacing any previous content
func (s *Store) Create(ctx context.Context, p remote.Path, fields remote.Fields) error {
	if err := p.Validate(true); err != nil {
		return err
	}

	data, err := json.Marshal(fields.Resolve(s.now()))
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", p, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, DocKey(p), data, 0)
		pipe.SAdd(ctx, IndexKey(p), p.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", p, err)
	}

	return s.notify(ctx, p)
}

// MergeWrite overlays fields onto the stored document, creating it when missing.
func (s *Store) MergeWrite(ctx context.Context, p remote.Path, fields remote.Fields) error {
	if err := p.Validate(true); err != nil {
		return err
	}

	key := DocKey(p)
	patch := fields.Resolve(s.now())

	txf := func(tx *redis.Tx) error {
		current := remote.Fields{}
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(data, &current); err != nil {
				return fmt.Errorf("corrupt document %s: %w", p, err)
			}
		}

		merged, err := json.Marshal(remote.Merge(current, patch))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, merged, 0)
			pipe.SAdd(ctx, IndexKey(p), p.ID)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < maxMergeRetries; attempt++ {
		err = s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
		s.log.Debug("merge conflict, retrying",
			logger.String("path", p.String()),
			logger.Int("attempt", attempt+1))
	}
	if err != nil {
		return fmt.Errorf("failed to merge %s: %w", p, err)
	}

	return s.notify(ctx, p)
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, p remote.Path) error {
	if err := p.Validate(true); err != nil {
		return err
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, DocKey(p))
		pipe.SRem(ctx, IndexKey(p), p.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", p, err)
	}

	return s.notify(ctx, p)
}

// Ping reports whether Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) notify(ctx context.Context, p remote.Path) error {
	if err := s.client.Publish(ctx, ChannelKey(p), p.ID).Err(); err != nil {
		// The write itself landed; subscribers catch up on their next reload.
		s.log.Warn("failed to publish change",
			logger.String("path", p.String()),
			logger.Error(err))
	}
	return nil
}

// load reads every document of p's collection, sorted by id.
func (s *Store) load(ctx context.Context, p remote.Path) ([]remote.Document, error) {
	ids, err := s.client.SMembers(ctx, IndexKey(p)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", p, err)
	}
	if len(ids) == 0 {
		return []remote.Document{}, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = DocKey(p.Doc(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}

	docs := make([]remote.Document, 0, len(ids))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a document: a delete raced the read.
			continue
		}
		var fields remote.Fields
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			s.log.Warn("skipping corrupt document",
				logger.String("key", keys[i]),
				logger.Error(err))
			continue
		}
		docs = append(docs, remote.Document{ID: ids[i], Fields: fields})
	}

	return docs, nil
}
