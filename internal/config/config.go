package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Settings holds the tunable knobs for a content session. Loaded from an
// optional YAML file, then overridden by environment variables.
type Settings struct {
	// Content shaping
	AgeGroup string   `yaml:"age_group"` // "4-6", "7-9", ...
	Topics   []string `yaml:"topics"`    // allowed seed topics for fresh tracks

	// Pipeline tuning
	BatchSize       int `yaml:"batch_size"`        // skeletons per generation batch
	Lookahead       int `yaml:"lookahead"`         // hydration window size
	ExtendMargin    int `yaml:"extend_margin"`     // extend when this close to the end
	MaxAssetRetries int `yaml:"max_asset_retries"` // asset attempts before giving up

	// Collaborators
	ProviderURL string `yaml:"provider_url"` // generation sidecar ("" = built-in library)
	StatePath   string `yaml:"state_path"`   // directory for the asset cache db
}

// Defaults returns the baseline settings used when no file is present
func Defaults() *Settings {
	return &Settings{
		AgeGroup:        "4-8",
		Topics:          []string{"animals", "space", "oceans", "dinosaurs"},
		BatchSize:       3,
		Lookahead:       3,
		ExtendMargin:    2,
		MaxAssetRetries: 2,
		StatePath:       "state",
	}
}

// Load reads settings from a YAML file, falling back to defaults if the file
// is missing. Environment overrides are applied last.
func Load(path string) (*Settings, error) {
	s := Defaults()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	s.applyEnv()
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyEnv() {
	if v := os.Getenv("LUMI_PROVIDER_URL"); v != "" {
		s.ProviderURL = v
	}
	if v := os.Getenv("LUMI_STATE_PATH"); v != "" {
		s.StatePath = v
	}
	if v := os.Getenv("LUMI_AGE_GROUP"); v != "" {
		s.AgeGroup = v
	}
	if v := os.Getenv("LUMI_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.BatchSize = n
		}
	}
}

func (s *Settings) validate() error {
	if s.BatchSize < 1 {
		return fmt.Errorf("batch_size must be >= 1, got %d", s.BatchSize)
	}
	if s.Lookahead < 1 {
		return fmt.Errorf("lookahead must be >= 1, got %d", s.Lookahead)
	}
	if s.ExtendMargin < 0 {
		return fmt.Errorf("extend_margin must be >= 0, got %d", s.ExtendMargin)
	}
	if s.MaxAssetRetries < 0 {
		return fmt.Errorf("max_asset_retries must be >= 0, got %d", s.MaxAssetRetries)
	}
	return nil
}
