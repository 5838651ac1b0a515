// Package cache opens the Redis connection shared by the alert queue.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPingTimeout bounds the connectivity check in Dial.
const DefaultPingTimeout = 5 * time.Second

// Dial connects to addr and verifies the server answers. The client is
// returned even when the ping fails so callers may keep retrying through it.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*redis.Client, error) {
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return client, fmt.Errorf("platform/cache: ping %s: %w", addr, err)
	}
	return client, nil
}
