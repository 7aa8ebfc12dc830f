// Package session ties the behavioral engine together for one user session:
// a metrics store, a content track, and the recommendation policy, built at
// session start and torn down at session end. The UI talks only to this
// surface.
package session

import (
	"context"
	"sync"

	"github.com/lumikids/lumi/internal/budget"
	"github.com/lumikids/lumi/internal/config"
	"github.com/lumikids/lumi/internal/gen"
	"github.com/lumikids/lumi/internal/logging"
	"github.com/lumikids/lumi/internal/metrics"
	"github.com/lumikids/lumi/internal/policy"
	"github.com/lumikids/lumi/internal/track"
	"github.com/lumikids/lumi/internal/types"
)

// InteractionKindFeed tags interactions driven by the scroll feed
const InteractionKindFeed = "feed_card"

// Session is the lifecycle-scoped context object owning all mutable state
// for one user session.
type Session struct {
	metrics *metrics.Store
	track   *track.Track
	gate    *budget.Gate

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	position int // last reported visible index, -1 before first scroll
}

// Config wires a session to its collaborators
type Config struct {
	Gen      gen.Service
	Settings *config.Settings
	Gate     *budget.Gate // optional prefetch gate
	OnChange func()       // optional UI notification on buffer changes
}

// New builds a session and starts its background work (session clock, CPU
// gate). The content track stays empty until Open is called.
func New(cfg Config) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		metrics:  metrics.NewStore(),
		gate:     cfg.Gate,
		ctx:      ctx,
		cancel:   cancel,
		position: -1,
	}
	s.track = track.New(track.Config{
		Gen:       cfg.Gen,
		Settings:  cfg.Settings,
		Recommend: s.Recommend,
		Gate:      cfg.Gate,
		OnChange:  cfg.OnChange,
	})

	s.metrics.Start()
	if s.gate != nil {
		s.gate.Start()
	}
	return s
}

// Open loads the initial content track and warms the first window
func (s *Session) Open() error {
	if err := s.track.LoadInitial(s.ctx); err != nil {
		return err
	}
	s.OnScroll(0)
	return nil
}

// Close tears the session down: the clock stops, in-flight hydrations are
// orphaned and dropped when they land.
func (s *Session) Close() {
	s.cancel()
	s.metrics.Stop()
	if s.gate != nil {
		s.gate.Stop()
	}
	logging.Info("session", "closed after %ds", s.metrics.Snapshot().SessionDuration)
}

// OnScroll is the scroll-position callback the UI invokes on every visible
// item change. It pairs the interaction lifecycle (moving on ends the current
// interaction as a success) and drives the look-ahead hydration window.
func (s *Session) OnScroll(index int) {
	item, ok := s.track.Item(index)
	if !ok {
		return
	}

	s.mu.Lock()
	samePosition := index == s.position
	s.position = index
	s.mu.Unlock()

	if !samePosition {
		s.metrics.EndInteraction(true)
		s.metrics.StartInteraction(item.ID, InteractionKindFeed)
	}

	s.track.OnPositionChange(s.ctx, index)
}

// StartInteraction forwards to the metrics tracker for non-feed surfaces
// (lessons, games) whose lifecycle the UI drives directly.
func (s *Session) StartInteraction(id, kind string) {
	s.metrics.StartInteraction(id, kind)
}

// EndInteraction forwards to the metrics tracker
func (s *Session) EndInteraction(success bool) {
	s.metrics.EndInteraction(success)
}

// ReportFrustration records an explicit negative signal
func (s *Session) ReportFrustration(amount int) {
	s.metrics.ReportFrustration(amount)
}

// ReportSuccess records an explicit positive signal
func (s *Session) ReportSuccess() {
	s.metrics.ReportSuccess()
}

// Recommend evaluates the policy against the current metrics
func (s *Session) Recommend() types.Recommendation {
	return policy.Decide(s.metrics.Snapshot())
}

// Reset re-baselines the behavioral metrics and clears the content track.
// Elapsed session time is preserved. The caller reloads content via Open.
func (s *Session) Reset() {
	s.metrics.Reset()
	s.track.Reset()

	s.mu.Lock()
	s.position = -1
	s.mu.Unlock()
}

// Rehydrate retries a failed item on user request
func (s *Session) Rehydrate(index int) {
	s.track.Rehydrate(s.ctx, index)
}

// Metrics returns a read-only snapshot for rendering
func (s *Session) Metrics() types.Metrics {
	return s.metrics.Snapshot()
}

// Items returns a read-only snapshot of the content track for rendering
func (s *Session) Items() []types.ContentItem {
	return s.track.Items()
}
