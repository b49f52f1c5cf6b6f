// Package redis provides a Redis client component used for query and
// embedding caches.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	redisopts "github.com/chopper-ai/chopper-docs/pkg/options/redis"
)

// pingTimeout bounds the connectivity check performed by New.
const pingTimeout = 5 * time.Second

// Client wraps the go-redis client together with its options.
type Client struct {
	client *goredis.Client
	opts   *redisopts.Options
}

// New creates a new Redis client and verifies connectivity with a ping.
func New(opts *redisopts.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("redis options is nil")
	}

	c := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: opts.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return &Client{
		client: c,
		opts:   opts,
	}, nil
}

// RawClient returns the underlying go-redis client.
func (c *Client) RawClient() *goredis.Client {
	return c.client
}

// HealthCheck verifies the Redis connection is still alive.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (c *Client) Close() error {
	return c.client.Close()
}
