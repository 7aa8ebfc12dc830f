// Package gen is the boundary to the generative content provider. The engine
// only depends on the Service interface; the concrete provider may be a
// remote sidecar (Client), the built-in library (Static), or either wrapped
// in a cache (Cached).
package gen

import (
	"context"

	"github.com/lumikids/lumi/internal/config"
	"github.com/lumikids/lumi/internal/types"
)

// Skeleton is a freshly generated content unit before hydration: text only,
// no asset. The track assigns IDs when installing skeletons.
type Skeleton struct {
	Title string `json:"title"`
	Topic string `json:"topic"`
	Fact  string `json:"fact"`
}

// Service is the async content-generation collaborator
type Service interface {
	// GenerateBatch returns a batch of content skeletons seeded by topic and
	// biased by the current recommendation. Safe to call repeatedly with
	// different recommendations.
	GenerateBatch(ctx context.Context, seedTopic string, st *config.Settings, rec types.Recommendation) ([]Skeleton, error)

	// GenerateAsset returns an illustration reference for a single item.
	// May fail (timeout, quota); callers treat failure as transient.
	GenerateAsset(ctx context.Context, prompt string) (string, error)
}
