package gen

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/lumikids/lumi/internal/config"
	"github.com/lumikids/lumi/internal/logging"
	"github.com/lumikids/lumi/internal/types"
)

// AssetStore is an optional persistent tier for asset memoization
type AssetStore interface {
	GetAsset(key string) (string, bool, error)
	PutAsset(key, url string) error
}

// Cached memoizes asset generation by content key: a memory TTL tier backed
// by an optional persistent store. Batch generation always passes through —
// repeated identical batches would make the feed repetitive.
type Cached struct {
	inner  Service
	assets *cache.Cache
	store  AssetStore // nil = memory tier only
}

// NewCached wraps a generation service with asset memoization
func NewCached(inner Service, store AssetStore) *Cached {
	return &Cached{
		inner:  inner,
		assets: cache.New(24*time.Hour, 1*time.Hour),
		store:  store,
	}
}

// GenerateBatch delegates to the wrapped service
func (c *Cached) GenerateBatch(ctx context.Context, seedTopic string, st *config.Settings, rec types.Recommendation) ([]Skeleton, error) {
	return c.inner.GenerateBatch(ctx, seedTopic, st, rec)
}

// GenerateAsset returns a cached illustration when one exists for the prompt,
// otherwise generates and memoizes it. A stale cached result is harmless:
// assets are keyed by their full prompt.
func (c *Cached) GenerateAsset(ctx context.Context, prompt string) (string, error) {
	if url, found := c.assets.Get(prompt); found {
		return url.(string), nil
	}

	if c.store != nil {
		url, found, err := c.store.GetAsset(prompt)
		if err != nil {
			logging.Debug("gen", "asset store read failed: %v", err)
		} else if found {
			c.assets.Set(prompt, url, cache.DefaultExpiration)
			return url, nil
		}
	}

	url, err := c.inner.GenerateAsset(ctx, prompt)
	if err != nil {
		return "", err
	}

	c.assets.Set(prompt, url, cache.DefaultExpiration)
	if c.store != nil {
		if err := c.store.PutAsset(prompt, url); err != nil {
			logging.Debug("gen", "asset store write failed: %v", err)
		}
	}
	return url, nil
}
