// Package redis coordinates merge runs across processes. Two runs of the same
// source must not interleave, so each run holds a per-source lock.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/populist-vote/platform-sub000/internal/platform/config"
)

// Client is the go-redis client plus the run-lock operations.
type Client struct {
	*redis.Client
}

// New connects to cfg.URL. A nil client and nil error mean run locking is
// disabled.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Client{Client: rdb}, nil
}

// LockRun takes the run lock for sourceID. It fails with ErrLockHeld while
// another process holds it.
func (c *Client) LockRun(ctx context.Context, sourceID string, ttl time.Duration) (*RunLock, error) {
	return AcquireRunLock(ctx, c.Client, sourceID, ttl)
}
