package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanCount is the COUNT hint passed to SCAN when listing keys.
const scanCount = 500

// RedisStore implements Store on top of Redis hashes.
type RedisStore struct {
	redis redis.UniversalClient
}

// NewRedisStore creates a new store with Redis backend.
func NewRedisStore(redisClient redis.UniversalClient) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
	}
}

// GetField retrieves a single hash field.
func (s *RedisStore) GetField(ctx context.Context, key, field string) (string, error) {
	val, err := s.redis.HGet(ctx, key, field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis hget: %w", err)
	}
	return val, nil
}

// GetAnyField retrieves one field of the hash stored at key.
// When several fields exist the lexically smallest one is returned.
func (s *RedisStore) GetAnyField(ctx context.Context, key string) (string, string, error) {
	fields, err := s.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return "", "", fmt.Errorf("redis hgetall: %w", err)
	}
	if len(fields) == 0 {
		return "", "", ErrNotFound
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return names[0], fields[names[0]], nil
}

// SetField sets a single hash field.
func (s *RedisStore) SetField(ctx context.Context, key, field, value string) error {
	if err := s.redis.HSet(ctx, key, field, value).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

// ReplaceField swaps the hash contents and TTL inside a MULTI/EXEC block,
// so readers observe either the old hash or the new one.
func (s *RedisStore) ReplaceField(ctx context.Context, key, field, value string, ttl time.Duration) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, field, value)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis replace field: %w", err)
	}
	return nil
}

// Expire sets the TTL of key.
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.redis.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("redis expire: %w", err)
	}
	return nil
}

// Keys lists keys matching pattern using SCAN.
func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.redis.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}

// Delete removes keys.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks connectivity to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
