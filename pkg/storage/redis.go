package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mosketh/storefront/pkg/redis"
)

type redisClient interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	StateKey(key string) string
}

// RedisStore persists payloads as plain string values with a sliding TTL.
type RedisStore struct {
	client redisClient
	ttl    time.Duration
}

// NewRedisStore wires the store to a redis client. ttl <= 0 keeps keys forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.client.StateKey(key))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(val), nil
}

func (r *RedisStore) Save(ctx context.Context, key string, payload []byte) error {
	ttl := r.ttl
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, r.client.StateKey(key), string(payload), ttl)
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.StateKey(key))
}
