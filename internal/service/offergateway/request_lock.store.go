package offergateway

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RequestLockStore guards against concurrent builds of the same request_id
// across gateway replicas.
type RequestLockStore interface {
	Acquire(ctx context.Context, requestID string, ttl time.Duration, owner string) (bool, error)
	Release(ctx context.Context, requestID string, owner string) error
}

type RedisRequestLockStore struct {
	client *redis.Client
}

func NewRedisRequestLockStore(cacheDSN string) (*RedisRequestLockStore, error) {
	if cacheDSN == "" {
		return nil, fmt.Errorf("redis cache_dsn is required")
	}

	options, err := redis.ParseURL(cacheDSN)
	if err != nil {
		return nil, fmt.Errorf("parse redis cache_dsn: %w", err)
	}

	return &RedisRequestLockStore{client: redis.NewClient(options)}, nil
}

func (s *RedisRequestLockStore) Acquire(ctx context.Context, requestID string, ttl time.Duration, owner string) (bool, error) {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}

	acquired, err := s.client.SetNX(ctx, requestLockKey(requestID), owner, ttl).Result()
	if err != nil {
		return false, err
	}

	return acquired, nil
}

func (s *RedisRequestLockStore) Release(ctx context.Context, requestID string, owner string) error {
	script := redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

	_, err := script.Run(ctx, s.client, []string{requestLockKey(requestID)}, owner).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	return nil
}

func (s *RedisRequestLockStore) Close() error {
	return s.client.Close()
}

func requestLockKey(requestID string) string {
	return fmt.Sprintf("offer-intent:%s:build-lock", requestID)
}
