// Package cache provides redis client infrastructure.
// This is part of the platform layer and contains no business logic.
package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewClient creates a redis client from a redis URL and verifies connectivity.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
