package types

import "time"

// EnergyLevel is a coarse classification of recent interaction pace
type EnergyLevel string

const (
	EnergyCalm EnergyLevel = "calm" // unhurried, dwelling on items
	EnergyHigh EnergyLevel = "high" // restless, scrolling quickly
)

// Metrics is the behavioral profile derived from the interaction stream.
// Session-scoped, never persisted.
type Metrics struct {
	AttentionSpan    float64     `json:"attention_span_ms"` // rolling mean of recent durations
	FrustrationLevel int         `json:"frustration_level"` // 0-10
	EnergyLevel      EnergyLevel `json:"energy_level"`
	TopicStickiness  int         `json:"topic_stickiness"` // 0-10
	SessionDuration  int         `json:"session_duration_s"`
}

// Interaction is one unit of attention: a single visible content card.
// At most one is live at a time.
type Interaction struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // feed_card, lesson, story_page
	StartTime time.Time `json:"start_time"`
}

// Difficulty of recommended content
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Format of recommended content
type Format string

const (
	FormatFact  Format = "fact"
	FormatGame  Format = "game"
	FormatStory Format = "story"
	FormatVideo Format = "video"
)

// TopicCategory biases topic selection for recommended content
type TopicCategory string

const (
	TopicStandard   TopicCategory = "standard"
	TopicHighEnergy TopicCategory = "high_energy"
	TopicCalm       TopicCategory = "calm"
)

// Recommendation is the policy output: what to generate next for this user.
// Recomputed on demand, never stored.
type Recommendation struct {
	Difficulty    Difficulty    `json:"difficulty"`
	Format        Format        `json:"format"`
	TopicCategory TopicCategory `json:"topic_category"`
	Reason        string        `json:"reason"` // which rule fired, for observability
}

// HydrationStatus tracks a content item's enrichment lifecycle.
// Transitions are one-directional: empty -> hydrating -> ready|failed.
type HydrationStatus string

const (
	HydrationEmpty     HydrationStatus = "empty"     // skeleton only, no asset requested
	HydrationHydrating HydrationStatus = "hydrating" // asset request in flight
	HydrationReady     HydrationStatus = "ready"     // asset attached, renderable
	HydrationFailed    HydrationStatus = "failed"    // retries exhausted, re-hydratable
)

// ContentItem is one element of the content track. The track is the single
// writer of Status and ImageURL; the UI only reads.
type ContentItem struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Topic    string          `json:"topic"`
	Fact     string          `json:"fact"`
	ImageURL string          `json:"image_url,omitempty"`
	Status   HydrationStatus `json:"status"`
	Retries  int             `json:"retries,omitempty"` // failed asset attempts so far
}

// Renderable reports whether the item has everything the UI needs
func (c *ContentItem) Renderable() bool {
	return c.Status == HydrationReady
}
