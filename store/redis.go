package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/always-cache/conditional/rfc7232"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "validator:"

// RedisStore is a ValidatorStore backed by Redis, for setups where several
// server instances need to share validator state.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store. A non-zero ttl bounds the
// lifetime of stored validators; an expired entry simply means the next
// conditional request cannot be short-circuited before handler execution.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (rfc7232.TimedValidator, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return rfc7232.TimedValidator{}, false, nil
	}
	if err != nil {
		return rfc7232.TimedValidator{}, false, err
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return rfc7232.TimedValidator{}, false, err
	}
	return rec.validator(), true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, v rfc7232.TimedValidator) error {
	data, err := json.Marshal(toRecord(v))
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+key, data, s.ttl).Err()
}

func (s *RedisStore) Purge(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}
