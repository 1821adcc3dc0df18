package redisx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is a thin go-redis wrapper that namespaces every key with Prefix.
type Client struct {
	Rdb    *redis.Client
	Prefix string
}

func New(addr string, password string, db int) *Client {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	return &Client{Rdb: rdb}
}

func (c *Client) key(k string) string { return c.Prefix + k }

func (c *Client) Ping(ctx context.Context) error {
	return c.Rdb.Ping(ctx).Err()
}

func (c *Client) Close() error { return c.Rdb.Close() }

// Get reports found=false for a missing key instead of an error.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.Rdb.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores val; ttl <= 0 keeps it forever.
func (c *Client) Set(ctx context.Context, key string, val string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.Rdb.Set(ctx, c.key(key), val, ttl).Err()
}

func (c *Client) Del(ctx context.Context, key string) error {
	return c.Rdb.Del(ctx, c.key(key)).Err()
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.Rdb.Exists(ctx, c.key(key)).Result()
	return n == 1, err
}
