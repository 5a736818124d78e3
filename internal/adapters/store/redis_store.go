package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-service/internal/platform/obs"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps JSON records as plain string values under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
	// TTL expires records; zero keeps them until deleted.
	TTL    time.Duration
	logger *zap.Logger
}

func NewRedisStore(client *redis.Client, prefix string, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

// OpenRedis parses a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("open redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("open redis: ping: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Get(ctx context.Context, key string, dst any) (_ bool, err error) {
	defer obs.Time(ctx, s.logger, "store.redis.Get")(&err)

	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("redis get %q: decode: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value any) (err error) {
	defer obs.Time(ctx, s.logger, "store.redis.Put")(&err)

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis put %q: encode: %w", key, err)
	}

	if err := s.client.Set(ctx, s.prefix+key, raw, s.TTL).Err(); err != nil {
		return fmt.Errorf("redis put %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete %q: %w", key, err)
	}
	return nil
}
