package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.Parallelism != 1 {
		t.Errorf("Parallelism = %d, want 1", cfg.Engine.Parallelism)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled default should be true")
	}
	if cfg.Cache.MaxEntries != 0 {
		t.Errorf("MaxEntries = %d, want 0 (unbounded)", cfg.Cache.MaxEntries)
	}
	if cfg.FixedPoint.MaxStates != 4096 {
		t.Errorf("MaxStates = %d, want 4096", cfg.FixedPoint.MaxStates)
	}
	if cfg.FixedPoint.UnrollDepth != 64 {
		t.Errorf("UnrollDepth = %d, want 64", cfg.FixedPoint.UnrollDepth)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENGINE_PARALLELISM", "8")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_MAX_ENTRIES", "512")
	t.Setenv("FIXPOINT_MAX_STATES", "100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.Parallelism != 8 {
		t.Errorf("Parallelism = %d, want 8", cfg.Engine.Parallelism)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false")
	}
	if cfg.Cache.MaxEntries != 512 {
		t.Errorf("MaxEntries = %d, want 512", cfg.Cache.MaxEntries)
	}
	if cfg.FixedPoint.MaxStates != 100 {
		t.Errorf("MaxStates = %d, want 100", cfg.FixedPoint.MaxStates)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("ENGINE_PARALLELISM", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("negative parallelism should fail validation")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("ENGINE_PARALLELISM", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.Parallelism != 1 {
		t.Errorf("Parallelism = %d, want default 1", cfg.Engine.Parallelism)
	}
}
