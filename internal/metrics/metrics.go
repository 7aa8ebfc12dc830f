package metrics

import (
	"sync"
	"time"

	"github.com/lumikids/lumi/internal/logging"
	"github.com/lumikids/lumi/internal/types"
)

// Policy constants shared with the recommendation rules. Exposed as named
// constants so they are independently testable and tunable.
const (
	// BaselineAttentionMs is the neutral attention span assumed before any
	// interaction completes.
	BaselineAttentionMs = 5000.0

	// BaselineStickiness is the neutral topic stickiness for a fresh session.
	BaselineStickiness = 5

	// HistoryWindow is how many recent interaction durations feed the
	// attention span rolling mean.
	HistoryWindow = 5

	// HighEnergyBelowMs: a rolling mean under this marks the user restless.
	HighEnergyBelowMs = 4000.0

	// StickyAboveMs: a single interaction longer than this counts as going
	// deep on a topic.
	StickyAboveMs = 10000.0

	// FrustrationMax / StickinessMax bound the two accumulated scores.
	FrustrationMax = 10
	StickinessMax  = 10

	// SuccessRelief is how much an explicit success signal lowers frustration.
	SuccessRelief = 2
)

// Store holds the behavioral metrics for one session plus the single active
// interaction. All mutation goes through the narrow operation set below; the
// mutex makes that safe from any goroutine.
type Store struct {
	mu      sync.RWMutex
	m       types.Metrics
	history []float64 // last HistoryWindow durations, ms, oldest first
	active  *types.Interaction

	now      func() time.Time // injectable for tests
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewStore creates a metrics store at session baseline
func NewStore() *Store {
	return &Store{
		m: types.Metrics{
			AttentionSpan:    BaselineAttentionMs,
			FrustrationLevel: 0,
			EnergyLevel:      types.EnergyCalm,
			TopicStickiness:  BaselineStickiness,
		},
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Start begins the session clock: SessionDuration ticks up once per second
// until Stop is called.
func (s *Store) Start() {
	go s.tick()
	logging.Debug("metrics", "session clock started")
}

// Stop halts the session clock. Safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *Store) tick() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.m.SessionDuration++
			s.mu.Unlock()
		}
	}
}

// StartInteraction records a new active interaction. A still-active previous
// interaction is overwritten and its elapsed time discarded; correct pairing
// is the caller's responsibility.
func (s *Store) StartInteraction(id, kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		logging.Debug("metrics", "interaction %s overwritten by %s before ending", s.active.ID, id)
	}
	s.active = &types.Interaction{
		ID:        id,
		Kind:      kind,
		StartTime: s.now(),
	}
}

// EndInteraction closes the active interaction and folds its duration into
// the behavioral metrics. No-op when nothing is active.
func (s *Store) EndInteraction(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return
	}
	durationMs := float64(s.now().Sub(s.active.StartTime).Milliseconds())
	s.active = nil

	s.history = append(s.history, durationMs)
	if len(s.history) > HistoryWindow {
		s.history = s.history[1:]
	}

	var sum float64
	for _, d := range s.history {
		sum += d
	}
	s.m.AttentionSpan = sum / float64(len(s.history))

	if s.m.AttentionSpan < HighEnergyBelowMs {
		s.m.EnergyLevel = types.EnergyHigh
	} else {
		s.m.EnergyLevel = types.EnergyCalm
	}

	if durationMs > StickyAboveMs {
		s.m.TopicStickiness = clamp(s.m.TopicStickiness+1, 0, StickinessMax)
	} else {
		s.m.TopicStickiness = clamp(s.m.TopicStickiness-1, 0, StickinessMax)
	}

	if success {
		s.m.FrustrationLevel = clamp(s.m.FrustrationLevel-1, 0, FrustrationMax)
	}
}

// ReportFrustration raises the frustration level by amount (typically 1),
// capped at FrustrationMax.
func (s *Store) ReportFrustration(amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.FrustrationLevel = clamp(s.m.FrustrationLevel+amount, 0, FrustrationMax)
}

// ReportSuccess lowers frustration after an explicit positive signal
func (s *Store) ReportSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.FrustrationLevel = clamp(s.m.FrustrationLevel-SuccessRelief, 0, FrustrationMax)
}

// Snapshot returns a copy of the current metrics
func (s *Store) Snapshot() types.Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m
}

// Active returns the in-flight interaction, if any
func (s *Store) Active() (types.Interaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return types.Interaction{}, false
	}
	return *s.active, true
}

// Reset restores all metrics to their session baseline and clears the
// interaction history. SessionDuration is preserved: session continuity is
// independent of behavioral re-baselining.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := s.m.SessionDuration
	s.m = types.Metrics{
		AttentionSpan:    BaselineAttentionMs,
		FrustrationLevel: 0,
		EnergyLevel:      types.EnergyCalm,
		TopicStickiness:  BaselineStickiness,
		SessionDuration:  elapsed,
	}
	s.history = nil
	s.active = nil
	logging.Info("metrics", "reset to baseline (session at %ds)", elapsed)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
