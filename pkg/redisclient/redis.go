package redisclient

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/andreyxaxa/listing-admin/pkg/retry"
	"github.com/redis/go-redis/v9"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
)

type Redis struct {
	connAttempts int
	connTimeout  time.Duration

	Client *redis.Client
}

func New(addr, password string, db int, opts ...Option) (*Redis, error) {
	r := &Redis{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.Client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	policy := retry.New(r.connAttempts, retry.Constant(r.connTimeout))
	policy.OnRetry = func(attempt int, _ error) {
		log.Printf("Redis is trying to connect, attempts left: %d", r.connAttempts-attempt)
	}

	err := policy.Do(context.Background(), func(ctx context.Context, _ int) error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		return r.Client.Ping(pingCtx).Err()
	})
	if err != nil {
		_ = r.Client.Close()

		return nil, fmt.Errorf("redisclient - New - connAttempts == 0: %w", err)
	}

	return r, nil
}

func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}

	return nil
}
