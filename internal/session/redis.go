package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "session"
	maxUpdateRetries = 8
)

// RedisStore keeps sessions as JSON documents in Redis. Keys expire after
// ttl without an update.
type RedisStore struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		ttl:       ttl,
		keyPrefix: defaultKeyPrefix,
	}
}

func (r *RedisStore) key(id string) string {
	return fmt.Sprintf("%s:%s", r.keyPrefix, id)
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	return r.load(ctx, r.client, id)
}

// Update applies fn inside a WATCH/MULTI transaction and retries when
// another writer touched the key in between.
func (r *RedisStore) Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error) {
	key := r.key(id)

	var saved *Session
	txf := func(tx *redis.Tx) error {
		s, err := r.load(ctx, tx, id)
		if errors.Is(err, ErrNotFound) {
			s = New(id)
		} else if err != nil {
			return err
		}

		if err := fn(s); err != nil {
			return err
		}

		s.ID = id
		if r.ttl > 0 {
			s.ExpiresAt = time.Now().Add(r.ttl)
		}

		payload, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		saved = s
		return nil
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return saved, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}

	return nil, ErrConflict
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *RedisStore) load(ctx context.Context, c redis.Cmdable, id string) (*Session, error) {
	payload, err := c.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}
