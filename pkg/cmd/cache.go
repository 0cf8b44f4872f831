package cmd

import (
	"context"

	"github.com/chainreact/chainreact/pkg/cache"
)

// NewCache returns a Redis-backed cache when a URL is configured and an
// in-process cache otherwise.
func NewCache(ctx context.Context, redisURL string) (cache.Cache, error) {
	if redisURL == "" {
		return cache.NewMemoryCache(), nil
	}

	return cache.NewRedisCache(ctx, redisURL)
}
