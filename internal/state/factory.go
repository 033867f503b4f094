package state

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Options struct {
	// Backend is auto, memory, redis or postgres.
	Backend     string
	DatabaseURL string
	RedisAddr   string
	TTL         time.Duration
}

// NewStorage creates the configured backend. In auto mode postgres wins over redis,
// and memory is used when neither is configured.
func NewStorage(ctx context.Context, opts Options) (Storage, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" || backend == "auto" {
		switch {
		case strings.TrimSpace(opts.DatabaseURL) != "":
			backend = "postgres"
		case strings.TrimSpace(opts.RedisAddr) != "":
			backend = "redis"
		default:
			backend = "memory"
		}
	}

	switch backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "redis":
		return NewRedisStorage(ctx, opts.RedisAddr, opts.TTL)
	case "postgres":
		return NewPostgresStorage(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown state backend %q", opts.Backend)
	}
}
