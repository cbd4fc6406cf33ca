package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Level != "arena" || cfg.Margin != 5 || cfg.StepFrames != 10 || cfg.TickRate != 60 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.FreefallSpeed != 3 || cfg.Watch || cfg.Seed != 0 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TRAILTACTICS_LEVEL", "cliffs")
	t.Setenv("TRAILTACTICS_SEED", "42")
	t.Setenv("TRAILTACTICS_WATCH", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Level != "cliffs" || cfg.Seed != 42 || !cfg.Watch {
		t.Fatalf("expected overrides applied, got %+v", cfg)
	}
}

func TestLoadError(t *testing.T) {
	t.Setenv("TRAILTACTICS_MARGIN", "wide")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
