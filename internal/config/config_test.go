package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	d := Defaults()
	if s.BatchSize != d.BatchSize || s.Lookahead != d.Lookahead || s.AgeGroup != d.AgeGroup {
		t.Errorf("Expected defaults, got %+v", s)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumi.yaml")
	data := []byte("age_group: \"7-9\"\nbatch_size: 5\ntopics:\n  - volcanoes\n  - insects\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.AgeGroup != "7-9" {
		t.Errorf("Expected age group 7-9, got %q", s.AgeGroup)
	}
	if s.BatchSize != 5 {
		t.Errorf("Expected batch size 5, got %d", s.BatchSize)
	}
	if len(s.Topics) != 2 || s.Topics[0] != "volcanoes" {
		t.Errorf("Expected topics from file, got %v", s.Topics)
	}
	// Unset fields keep their defaults
	if s.Lookahead != Defaults().Lookahead {
		t.Errorf("Expected default lookahead, got %d", s.Lookahead)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LUMI_PROVIDER_URL", "http://gen.test:8410")
	t.Setenv("LUMI_BATCH_SIZE", "7")

	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.ProviderURL != "http://gen.test:8410" {
		t.Errorf("Expected provider url from env, got %q", s.ProviderURL)
	}
	if s.BatchSize != 7 {
		t.Errorf("Expected batch size 7 from env, got %d", s.BatchSize)
	}
}

func TestValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumi.yaml")
	if err := os.WriteFile(path, []byte("batch_size: 0\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected validation error for batch_size 0")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumi.yaml")
	if err := os.WriteFile(path, []byte("batch_size: [not an int\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected parse error for malformed yaml")
	}
}
