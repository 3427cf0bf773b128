// Package redis owns the connection handle for the latest-balance snapshot
// cache. The cache is optional: with no URL configured the service runs
// straight against the backing store.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"finbase/internal/platform/config"
)

// Client embeds the raw go-redis client so the cache decorator can issue
// commands directly while main still gets a health probe.
type Client struct {
	*redis.Client
}

// New dials the cache from configuration. A blank URL means the cache is
// disabled and the caller receives a nil client, which the wiring treats as
// "no decorator".
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{Client: client}, nil
}

// Health reports whether the cache still answers. The readiness endpoint
// degrades to 503 when it does not.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
