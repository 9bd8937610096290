package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCSRFStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisCSRFStore(client redis.UniversalClient, prefix string) *RedisCSRFStore {
	if prefix == "" {
		prefix = "csrf_session"
	}
	return &RedisCSRFStore{client: client, prefix: prefix}
}

func (s *RedisCSRFStore) Get(ctx context.Context, browserSessionID string) (string, error) {
	if s.client == nil {
		return "", nil
	}
	v, err := s.client.Get(ctx, s.key(browserSessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *RedisCSRFStore) Set(ctx context.Context, browserSessionID, token string, ttl time.Duration) error {
	if s.client == nil {
		return nil
	}
	return s.client.Set(ctx, s.key(browserSessionID), token, ttl).Err()
}

func (s *RedisCSRFStore) key(browserSessionID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, browserSessionID)
}
