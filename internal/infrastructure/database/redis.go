package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient backs sessions, phone tickets, OAuth state and reset tokens
type RedisClient struct {
	*redis.Client
	addr string
}

func NewRedis(addr, pass string, db int) *RedisClient {
	return &RedisClient{
		Client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     pass,
			DB:           db,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}),
		addr: addr,
	}
}

// Ping checks connectivity at start-up
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping %s: %w", c.addr, err)
	}
	return nil
}
