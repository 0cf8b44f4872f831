package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/chainreact/chainreact/pkg/cache"
	"github.com/chainreact/chainreact/pkg/registry"
)

const (
	nodeCatalogCacheKey = "chainreact:node-catalog"
	nodeCatalogCacheTTL = 5 * time.Minute
)

// Node serves the node catalog: every registered node type with its
// metadata and config schema. The catalog only changes on deploy, so
// listings are cached.
type Node struct {
	registry *registry.Registry
	cache    cache.Cache
	logger   *slog.Logger
}

func NewNode(registry *registry.Registry, cache cache.Cache, logger *slog.Logger) *Node {
	return &Node{
		registry: registry,
		cache:    cache,
		logger:   logger.With("module", "node_service"),
	}
}

// List returns catalog entries for every registered node type.
func (n *Node) List(ctx context.Context) ([]registry.Entry, error) {
	if n.cache != nil {
		cached, err := n.cache.Get(ctx, nodeCatalogCacheKey)
		if err == nil {
			var entries []registry.Entry

			err = json.Unmarshal(cached, &entries)
			if err == nil {
				return entries, nil
			}

			n.logger.WarnContext(ctx, "failed to decode cached node catalog", "error", err)
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			n.logger.WarnContext(ctx, "node catalog cache lookup failed", "error", err)
		}
	}

	entries := n.registry.Entries()

	if n.cache != nil {
		encoded, err := json.Marshal(entries)
		if err == nil {
			err = n.cache.Set(ctx, nodeCatalogCacheKey, encoded, nodeCatalogCacheTTL)
		}

		if err != nil {
			n.logger.WarnContext(ctx, "failed to cache node catalog", "error", err)
		}
	}

	return entries, nil
}
