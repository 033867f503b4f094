package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "teamsguide:state:"

// RedisStorage keeps state documents as plain string values with a sliding TTL.
type RedisStorage struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisStorage(ctx context.Context, addr string, ttl time.Duration) (*RedisStorage, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStorage{rdb: rdb, ttl: ttl}, nil
}

func (s *RedisStorage) Read(ctx context.Context, key string) ([]byte, error) {
	doc, err := s.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return doc, nil
}

func (s *RedisStorage) Write(ctx context.Context, key string, document []byte) error {
	if err := s.rdb.Set(ctx, redisKeyPrefix+key, document, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (s *RedisStorage) Backend() string { return "redis" }

func (s *RedisStorage) Close() error {
	return s.rdb.Close()
}
