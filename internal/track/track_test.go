package track

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lumikids/lumi/internal/config"
	"github.com/lumikids/lumi/internal/gen"
	"github.com/lumikids/lumi/internal/types"
)

// mockGen is a controllable generation service
type mockGen struct {
	mu         sync.Mutex
	batchCalls int
	assetCalls int
	seeds      []string
	batchFunc  func(seedTopic string, st *config.Settings) ([]gen.Skeleton, error)
	assetFunc  func(prompt string) (string, error)
}

func (m *mockGen) GenerateBatch(ctx context.Context, seedTopic string, st *config.Settings, rec types.Recommendation) ([]gen.Skeleton, error) {
	m.mu.Lock()
	m.batchCalls++
	m.seeds = append(m.seeds, seedTopic)
	m.mu.Unlock()
	if m.batchFunc != nil {
		return m.batchFunc(seedTopic, st)
	}
	batch := make([]gen.Skeleton, st.BatchSize)
	for i := range batch {
		batch[i] = gen.Skeleton{Title: fmt.Sprintf("Card %d", i), Topic: "animals", Fact: "Octopuses have three hearts."}
	}
	return batch, nil
}

func (m *mockGen) GenerateAsset(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.assetCalls++
	m.mu.Unlock()
	if m.assetFunc != nil {
		return m.assetFunc(prompt)
	}
	return "asset://test.png", nil
}

func (m *mockGen) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batchCalls, m.assetCalls
}

func testSettings() *config.Settings {
	return &config.Settings{
		AgeGroup:        "4-8",
		BatchSize:       3,
		Lookahead:       3,
		ExtendMargin:    2,
		MaxAssetRetries: 2,
	}
}

func defaultRecommend() types.Recommendation {
	return types.Recommendation{
		Difficulty:    types.DifficultyMedium,
		Format:        types.FormatFact,
		TopicCategory: types.TopicStandard,
		Reason:        "general discovery",
	}
}

func newTestTrack(svc gen.Service, st *config.Settings) *Track {
	return New(Config{
		Gen:       svc,
		Settings:  st,
		Recommend: defaultRecommend,
	})
}

// waitFor polls until the condition holds or the deadline passes
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestLoadInitial(t *testing.T) {
	svc := &mockGen{}
	tr := newTestTrack(svc, testSettings())

	if err := tr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}

	items := tr.Items()
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	for i, item := range items {
		if item.Status != types.HydrationEmpty {
			t.Errorf("Item %d: expected empty, got %s", i, item.Status)
		}
		if item.ID == "" || item.Fact == "" {
			t.Errorf("Item %d: incomplete skeleton %+v", i, item)
		}
	}
}

func TestHydrateItem(t *testing.T) {
	svc := &mockGen{}
	tr := newTestTrack(svc, testSettings())
	if err := tr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}

	tr.HydrateItem(context.Background(), 0)
	waitFor(t, "item 0 ready", func() bool {
		item, _ := tr.Item(0)
		return item.Status == types.HydrationReady
	})

	item, _ := tr.Item(0)
	if item.ImageURL != "asset://test.png" {
		t.Errorf("Expected asset attached, got %q", item.ImageURL)
	}
}

// Two hydration calls before the async result lands issue one request
func TestHydrateItemIdempotent(t *testing.T) {
	release := make(chan struct{})
	svc := &mockGen{
		assetFunc: func(prompt string) (string, error) {
			<-release
			return "asset://slow.png", nil
		},
	}
	tr := newTestTrack(svc, testSettings())
	if err := tr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}

	tr.HydrateItem(context.Background(), 0)
	tr.HydrateItem(context.Background(), 0)
	tr.HydrateItem(context.Background(), 0)

	item, _ := tr.Item(0)
	if item.Status != types.HydrationHydrating {
		t.Fatalf("Expected hydrating, got %s", item.Status)
	}

	close(release)
	waitFor(t, "item 0 ready", func() bool {
		item, _ := tr.Item(0)
		return item.Status == types.HydrationReady
	})

	if _, assets := svc.counts(); assets != 1 {
		t.Errorf("Expected exactly 1 asset request, got %d", assets)
	}
}

func TestHydrateOutOfRangeIsNoop(t *testing.T) {
	svc := &mockGen{}
	tr := newTestTrack(svc, testSettings())
	if err := tr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}

	tr.HydrateItem(context.Background(), -1)
	tr.HydrateItem(context.Background(), 99)

	time.Sleep(20 * time.Millisecond)
	if _, assets := svc.counts(); assets != 0 {
		t.Errorf("Expected no asset requests, got %d", assets)
	}
}

// Exhausted retries land the item in failed; Rehydrate brings it back
func TestFailureAndRehydrate(t *testing.T) {
	var fail = true
	var mu sync.Mutex
	svc := &mockGen{
		assetFunc: func(prompt string) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			if fail {
				return "", fmt.Errorf("quota exceeded")
			}
			return "asset://retry.png", nil
		},
	}
	st := testSettings()
	tr := newTestTrack(svc, st)
	if err := tr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}

	tr.HydrateItem(context.Background(), 0)
	waitFor(t, "item 0 failed", func() bool {
		item, _ := tr.Item(0)
		return item.Status == types.HydrationFailed
	})

	if _, assets := svc.counts(); assets != st.MaxAssetRetries+1 {
		t.Errorf("Expected %d attempts, got %d", st.MaxAssetRetries+1, assets)
	}

	// HydrateItem must not touch a failed item
	tr.HydrateItem(context.Background(), 0)
	time.Sleep(20 * time.Millisecond)
	if item, _ := tr.Item(0); item.Status != types.HydrationFailed {
		t.Fatalf("Expected failed to stay failed, got %s", item.Status)
	}

	mu.Lock()
	fail = false
	mu.Unlock()

	tr.Rehydrate(context.Background(), 0)
	waitFor(t, "item 0 ready after rehydrate", func() bool {
		item, _ := tr.Item(0)
		return item.Status == types.HydrationReady
	})
}

// Position change hydrates the visible item plus two ahead, nothing further
func TestLookaheadWindow(t *testing.T) {
	svc := &mockGen{}
	st := testSettings()
	st.BatchSize = 10
	tr := newTestTrack(svc, st)
	if err := tr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}

	// Simulate item 0 already consumed and ready
	tr.mu.Lock()
	tr.items[0].Status = types.HydrationReady
	tr.mu.Unlock()

	tr.OnPositionChange(context.Background(), 1)

	waitFor(t, "window {1,2,3} ready", func() bool {
		for _, i := range []int{1, 2, 3} {
			if item, _ := tr.Item(i); item.Status != types.HydrationReady {
				return false
			}
		}
		return true
	})

	for i := 4; i < 10; i++ {
		if item, _ := tr.Item(i); item.Status != types.HydrationEmpty {
			t.Errorf("Item %d beyond the window: expected empty, got %s", i, item.Status)
		}
	}
	if _, assets := svc.counts(); assets != 3 {
		t.Errorf("Expected 3 asset requests for the window, got %d", assets)
	}
}

// Reaching within the margin of the end extends the track exactly once per
// crossing, regardless of how many scroll events land there.
func TestExtendOncePerCrossing(t *testing.T) {
	svc := &mockGen{}
	tr := newTestTrack(svc, testSettings())
	if err := tr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}

	// len 3, margin 2: index 1 crosses the boundary
	for i := 0; i < 5; i++ {
		tr.OnPositionChange(context.Background(), 1)
	}
	waitFor(t, "track extended to 6", func() bool { return tr.Len() == 6 })

	if batches, _ := svc.counts(); batches != 2 {
		t.Errorf("Expected initial + 1 extension batch, got %d", batches)
	}

	// Still inside the old margin, but not within reach of the new end
	tr.OnPositionChange(context.Background(), 2)
	time.Sleep(30 * time.Millisecond)
	if tr.Len() != 6 {
		t.Fatalf("Expected no further extension at index 2, len %d", tr.Len())
	}

	// Next crossing: index 4 of 6
	tr.OnPositionChange(context.Background(), 4)
	waitFor(t, "track extended to 9", func() bool { return tr.Len() == 9 })

	if batches, _ := svc.counts(); batches != 3 {
		t.Errorf("Expected 3 batches total, got %d", batches)
	}
}

// An extension seeded by the last item carries its topic forward
func TestExtendSeedsFromLastItem(t *testing.T) {
	svc := &mockGen{}
	tr := newTestTrack(svc, testSettings())
	if err := tr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}

	tr.OnPositionChange(context.Background(), 2)
	waitFor(t, "extension", func() bool { return tr.Len() == 6 })

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.seeds) != 2 {
		t.Fatalf("Expected 2 batch calls, got %d", len(svc.seeds))
	}
	if svc.seeds[0] != "" {
		t.Errorf("Initial batch should have no seed, got %q", svc.seeds[0])
	}
	if svc.seeds[1] == "" {
		t.Errorf("Extension batch should carry a seed topic")
	}
}

// A reset while a request is in flight orphans the result: the old item is
// never written into the new track.
func TestStaleHydrationDropped(t *testing.T) {
	release := make(chan struct{})
	svc := &mockGen{
		assetFunc: func(prompt string) (string, error) {
			<-release
			return "asset://stale.png", nil
		},
	}
	tr := newTestTrack(svc, testSettings())
	if err := tr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}

	tr.HydrateItem(context.Background(), 0)
	tr.Reset()
	close(release)

	time.Sleep(50 * time.Millisecond)
	if got := tr.Len(); got != 0 {
		t.Errorf("Expected empty track after reset, got %d items", got)
	}
}

// Status only ever moves forward. A ready item is never re-requested.
func TestMonotonicTransitions(t *testing.T) {
	svc := &mockGen{}
	tr := newTestTrack(svc, testSettings())
	if err := tr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("LoadInitial failed: %v", err)
	}

	tr.HydrateItem(context.Background(), 1)
	waitFor(t, "item 1 ready", func() bool {
		item, _ := tr.Item(1)
		return item.Status == types.HydrationReady
	})

	tr.HydrateItem(context.Background(), 1)
	tr.Rehydrate(context.Background(), 1) // rehydrate only applies to failed
	time.Sleep(20 * time.Millisecond)

	item, _ := tr.Item(1)
	if item.Status != types.HydrationReady {
		t.Errorf("Expected ready to be terminal, got %s", item.Status)
	}
	if _, assets := svc.counts(); assets != 1 {
		t.Errorf("Expected 1 asset request, got %d", assets)
	}
}
