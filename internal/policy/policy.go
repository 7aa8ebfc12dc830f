// Package policy turns a metrics snapshot into a content recommendation.
//
// The rules are an ordered priority list: the first match wins. Frustration
// mitigation outranks engagement optimization, and restlessness detection
// outranks stickiness-driven escalation — a currently-bored user is never
// escalated to harder content, however sticky they have been historically.
package policy

import (
	"github.com/lumikids/lumi/internal/metrics"
	"github.com/lumikids/lumi/internal/types"
)

const (
	// FrustrationAbove triggers the calming-escape rule
	FrustrationAbove = 3

	// RestlessBelowMs triggers the focus-recapture rule
	RestlessBelowMs = metrics.HighEnergyBelowMs

	// StickinessAbove triggers the deep-dive rule
	StickinessAbove = 7
)

// Decide maps a metrics snapshot to a recommendation. Pure and total:
// identical snapshots always yield identical results, and every snapshot
// matches a rule.
func Decide(m types.Metrics) types.Recommendation {
	switch {
	case m.FrustrationLevel > FrustrationAbove:
		return types.Recommendation{
			Difficulty:    types.DifficultyEasy,
			Format:        types.FormatGame,
			TopicCategory: types.TopicCalm,
			Reason:        "calming escape: frustration above threshold",
		}
	case m.AttentionSpan < RestlessBelowMs:
		return types.Recommendation{
			Difficulty:    types.DifficultyEasy,
			Format:        types.FormatVideo,
			TopicCategory: types.TopicHighEnergy,
			Reason:        "recapturing focus: short recent attention span",
		}
	case m.TopicStickiness > StickinessAbove:
		return types.Recommendation{
			Difficulty:    types.DifficultyHard,
			Format:        types.FormatStory,
			TopicCategory: types.TopicStandard,
			Reason:        "deep dive: sustained engagement on topic",
		}
	default:
		return types.Recommendation{
			Difficulty:    types.DifficultyMedium,
			Format:        types.FormatFact,
			TopicCategory: types.TopicStandard,
			Reason:        "general discovery",
		}
	}
}
