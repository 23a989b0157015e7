package redispubsub

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client publishes messages on Redis channels named "<prefix>:<routing key>".
type Client struct {
	rdb    *redis.Client
	prefix string
}

// New connects to addr and verifies the connection.
func New(ctx context.Context, addr, prefix string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &Client{rdb: rdb, prefix: prefix}, nil
}

// Channel returns the channel a routing key is published on.
func (c *Client) Channel(routingKey string) string {
	if c.prefix == "" {
		return routingKey
	}
	return c.prefix + ":" + routingKey
}

// Publish sends body to the channel of routingKey.
func (c *Client) Publish(ctx context.Context, routingKey string, body []byte) error {
	if err := c.rdb.Publish(ctx, c.Channel(routingKey), body).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", c.Channel(routingKey), err)
	}
	return nil
}

// Subscribe listens on every channel under the prefix.
func (c *Client) Subscribe(ctx context.Context) *redis.PubSub {
	return c.rdb.PSubscribe(ctx, c.Channel("*"))
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
