package gen

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/lumikids/lumi/internal/config"
	"github.com/lumikids/lumi/internal/types"
)

// Static serves content from a built-in library. Used when no provider URL is
// configured, and by tests and the demo binary. Never fails.
type Static struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewStatic creates a library-backed generator. The seed makes item order
// reproducible for a given session.
func NewStatic(seed int64) *Static {
	return &Static{rng: rand.New(rand.NewSource(seed))}
}

var library = map[string][]string{
	"animals": {
		"Octopuses have three hearts and blue blood.",
		"A group of flamingos is called a flamboyance.",
		"Elephants can recognize themselves in mirrors.",
		"Honeybees talk to each other by dancing.",
	},
	"space": {
		"A day on Venus is longer than its year.",
		"Neutron stars can spin 600 times every second.",
		"Footprints on the Moon will last millions of years.",
		"Jupiter's Great Red Spot is a storm bigger than Earth.",
	},
	"oceans": {
		"We have mapped more of Mars than of our own ocean floor.",
		"The blue whale's heart is the size of a small car.",
		"Some jellyfish can live forever by aging backwards.",
		"The deepest part of the ocean is almost 11 kilometers down.",
	},
	"dinosaurs": {
		"The T. rex lived closer in time to us than to Stegosaurus.",
		"Some dinosaurs were smaller than chickens.",
		"Birds are living dinosaurs.",
		"Velociraptors were about the size of a turkey.",
	},
}

// GenerateBatch assembles a batch from the built-in library
func (g *Static) GenerateBatch(ctx context.Context, seedTopic string, st *config.Settings, rec types.Recommendation) ([]Skeleton, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	topic := seedTopic
	facts, ok := library[strings.ToLower(topic)]
	if !ok {
		// Unknown seed: fall back to a random allowed topic
		topics := st.Topics
		if len(topics) == 0 {
			for t := range library {
				topics = append(topics, t)
			}
		}
		topic = topics[g.rng.Intn(len(topics))]
		facts = library[topic]
		if len(facts) == 0 {
			facts = library["animals"]
			topic = "animals"
		}
	}

	batch := make([]Skeleton, 0, st.BatchSize)
	for i := 0; i < st.BatchSize; i++ {
		fact := facts[g.rng.Intn(len(facts))]
		batch = append(batch, Skeleton{
			Title: titleFor(rec.Format, topic),
			Topic: topic,
			Fact:  fact,
		})
	}
	return batch, nil
}

// GenerateAsset returns a deterministic placeholder illustration reference
func (g *Static) GenerateAsset(ctx context.Context, prompt string) (string, error) {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(prompt), " ", "-"))
	if len(slug) > 48 {
		slug = slug[:48]
	}
	return fmt.Sprintf("asset://library/%s.png", slug), nil
}

func titleFor(format types.Format, topic string) string {
	caser := strings.ToUpper(topic[:1]) + topic[1:]
	switch format {
	case types.FormatGame:
		return "Play with " + caser
	case types.FormatStory:
		return "A " + caser + " Story"
	case types.FormatVideo:
		return "Watch: " + caser
	default:
		return "Did you know? " + caser
	}
}
