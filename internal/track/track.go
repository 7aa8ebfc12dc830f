// Package track owns the content buffer and its hydration pipeline.
//
// Items enter the buffer as text-only skeletons and are enriched ("hydrated")
// with an illustration just ahead of the user's scroll position, so expensive
// generation work hides behind natural dwell time. The buffer is append-only;
// the only in-place mutation is hydration status and the attached asset, and
// this package is the single writer of both.
package track

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/lumikids/lumi/internal/budget"
	"github.com/lumikids/lumi/internal/config"
	"github.com/lumikids/lumi/internal/gen"
	"github.com/lumikids/lumi/internal/logging"
	"github.com/lumikids/lumi/internal/topics"
	"github.com/lumikids/lumi/internal/types"
)

// Config wires a Track to its collaborators
type Config struct {
	Gen       gen.Service
	Settings  *config.Settings
	Recommend func() types.Recommendation // current policy output
	Gate      *budget.Gate                // nil = prefetch always allowed
	OnChange  func()                      // called after any buffer mutation
}

// Track is the ordered, growable content sequence for one session
type Track struct {
	mu    sync.Mutex
	items []*types.ContentItem

	gen       gen.Service
	settings  *config.Settings
	recommend func() types.Recommendation
	gate      *budget.Gate
	onChange  func()

	// Async guards. generation is bumped on Reset so stale completions from
	// a previous track never mutate the current one.
	generation    int
	extendPending bool
	extendedAtLen int // pre-extension length of the last successful extend
}

// New creates an empty track
func New(cfg Config) *Track {
	return &Track{
		gen:           cfg.Gen,
		settings:      cfg.Settings,
		recommend:     cfg.Recommend,
		gate:          cfg.Gate,
		onChange:      cfg.OnChange,
		extendedAtLen: -1,
	}
}

// LoadInitial requests the first batch of skeletons, seeded by the current
// recommendation, and installs them un-hydrated.
func (t *Track) LoadInitial(ctx context.Context) error {
	rec := t.recommend()
	batch, err := t.gen.GenerateBatch(ctx, "", t.settings, rec)
	if err != nil {
		return fmt.Errorf("initial batch: %w", err)
	}

	t.mu.Lock()
	t.install(batch)
	t.mu.Unlock()

	logging.Info("track", "loaded initial track: %d items (%s)", len(batch), rec.Reason)
	t.notify()
	return nil
}

// install appends skeletons as EMPTY items. Caller holds the lock.
func (t *Track) install(batch []gen.Skeleton) {
	for _, sk := range batch {
		t.items = append(t.items, &types.ContentItem{
			ID:     uuid.NewString(),
			Title:  sk.Title,
			Topic:  sk.Topic,
			Fact:   sk.Fact,
			Status: types.HydrationEmpty,
		})
	}
}

// HydrateItem starts asset enrichment for the item at index. No-op unless
// the item is EMPTY: the status flips to HYDRATING under the lock before the
// async request is issued, so concurrent calls for the same index issue at
// most one request. Out-of-range indices are ignored.
func (t *Track) HydrateItem(ctx context.Context, index int) {
	t.mu.Lock()
	if index < 0 || index >= len(t.items) {
		t.mu.Unlock()
		return
	}
	item := t.items[index]
	if item.Status != types.HydrationEmpty {
		t.mu.Unlock()
		return
	}
	item.Status = types.HydrationHydrating
	generation := t.generation
	prompt := assetPrompt(item)
	t.mu.Unlock()

	t.notify()
	go t.fetchAsset(ctx, generation, index, prompt)
}

// Rehydrate retries a FAILED item on user request. No-op for any other state.
func (t *Track) Rehydrate(ctx context.Context, index int) {
	t.mu.Lock()
	if index < 0 || index >= len(t.items) {
		t.mu.Unlock()
		return
	}
	item := t.items[index]
	if item.Status != types.HydrationFailed {
		t.mu.Unlock()
		return
	}
	item.Status = types.HydrationHydrating
	item.Retries = 0
	generation := t.generation
	prompt := assetPrompt(item)
	t.mu.Unlock()

	t.notify()
	go t.fetchAsset(ctx, generation, index, prompt)
}

// fetchAsset runs the asset request with bounded retries, then lands the
// result. All attempts happen while the item stays HYDRATING.
func (t *Track) fetchAsset(ctx context.Context, generation, index int, prompt string) {
	var url string
	var err error

	for attempt := 0; attempt <= t.settings.MaxAssetRetries; attempt++ {
		url, err = t.gen.GenerateAsset(ctx, prompt)
		if err == nil {
			break
		}
		logging.Debug("track", "asset attempt %d for item %d failed: %v", attempt+1, index, err)

		t.mu.Lock()
		if t.generation != generation {
			t.mu.Unlock()
			return
		}
		t.items[index].Retries = attempt + 1
		t.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
	}

	t.mu.Lock()
	if t.generation != generation {
		// Track was reset while the request was in flight; the result is
		// cached by content key, so dropping it wastes nothing.
		t.mu.Unlock()
		return
	}
	item := t.items[index]
	if err != nil {
		item.Status = types.HydrationFailed
		t.mu.Unlock()
		logging.Info("track", "item %d failed to hydrate after %d attempts", index, t.settings.MaxAssetRetries+1)
	} else {
		item.ImageURL = url
		item.Status = types.HydrationReady
		t.mu.Unlock()
		logging.Debug("track", "item %d ready", index)
	}
	t.notify()
}

// OnPositionChange drives the look-ahead window: hydrate the visible item and
// the next Lookahead-1 positions, then extend the track if the user is close
// to the end. Prefetch beyond the visible item defers to the budget gate.
func (t *Track) OnPositionChange(ctx context.Context, index int) {
	t.mu.Lock()
	length := len(t.items)
	t.mu.Unlock()

	for i := index; i < index+t.settings.Lookahead && i < length; i++ {
		if i > index && !t.gate.AllowPrefetch() {
			logging.Debug("track", "prefetch deferred at index %d", i)
			break
		}
		t.HydrateItem(ctx, i)
	}

	t.maybeExtend(ctx, index)
}

// maybeExtend triggers one extension per boundary crossing. The guard keys on
// the pre-extension length: once an extension for this length has succeeded,
// further scroll events at the same length are no-ops, and the next trigger
// requires reaching the margin of the grown buffer. A failed extension leaves
// the guard unset so the next scroll event retries.
func (t *Track) maybeExtend(ctx context.Context, index int) {
	t.mu.Lock()
	length := len(t.items)
	if length == 0 || index < length-t.settings.ExtendMargin ||
		t.extendPending || t.extendedAtLen == length {
		t.mu.Unlock()
		return
	}
	t.extendPending = true
	generation := t.generation
	last := *t.items[length-1]
	t.mu.Unlock()

	go t.extend(ctx, generation, length, last)
}

// extend appends the next batch, seeded by the last item's content
func (t *Track) extend(ctx context.Context, generation, length int, last types.ContentItem) {
	seed := topics.Seed(last.Fact, last.Topic)
	rec := t.recommend()

	batch, err := t.gen.GenerateBatch(ctx, seed, t.settings, rec)

	t.mu.Lock()
	if t.generation != generation {
		t.mu.Unlock()
		return
	}
	t.extendPending = false
	if err != nil {
		t.mu.Unlock()
		logging.Info("track", "extend failed (seed %q): %v", seed, err)
		return
	}
	t.extendedAtLen = length
	t.install(batch)
	total := len(t.items)
	t.mu.Unlock()

	logging.Info("track", "extended track by %d items to %d (seed %q, %s)", len(batch), total, seed, rec.Reason)
	t.notify()
}

// Items returns a snapshot copy of the buffer for rendering
func (t *Track) Items() []types.ContentItem {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]types.ContentItem, len(t.items))
	for i, item := range t.items {
		out[i] = *item
	}
	return out
}

// Item returns a copy of the item at index
func (t *Track) Item(index int) (types.ContentItem, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.items) {
		return types.ContentItem{}, false
	}
	return *t.items[index], true
}

// Len returns the current buffer length
func (t *Track) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Reset discards the buffer. In-flight hydrations and extensions from before
// the reset are dropped when they land.
func (t *Track) Reset() {
	t.mu.Lock()
	t.generation++
	t.items = nil
	t.extendPending = false
	t.extendedAtLen = -1
	t.mu.Unlock()

	logging.Info("track", "buffer cleared")
	t.notify()
}

func (t *Track) notify() {
	if t.onChange != nil {
		t.onChange()
	}
}

// assetPrompt builds the illustration prompt for an item. The prompt doubles
// as the content key for asset caching.
func assetPrompt(item *types.ContentItem) string {
	return fmt.Sprintf("friendly children's illustration, topic %s: %s", item.Topic, item.Fact)
}
