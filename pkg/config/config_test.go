package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Search.FuzzyThreshold != 0.35 {
		t.Errorf("Expected fuzzy threshold 0.35, got %v", cfg.Search.FuzzyThreshold)
	}
	if cfg.Search.CorrectionFloor != 0.55 {
		t.Errorf("Expected correction floor 0.55, got %v", cfg.Search.CorrectionFloor)
	}
	if cfg.Search.SuggestionLimit != 5 {
		t.Errorf("Expected suggestion limit 5, got %d", cfg.Search.SuggestionLimit)
	}
	if cfg.Search.HighlightMarker != "**" {
		t.Errorf("Expected ** marker, got %q", cfg.Search.HighlightMarker)
	}
	if cfg.Session.DebounceMs != 300 {
		t.Errorf("Expected 300ms debounce, got %d", cfg.Session.DebounceMs)
	}
	if cfg.Server.MaxQuery != 120 || cfg.Server.DefaultLimit != 50 || cfg.Server.MaxLimit != 500 {
		t.Errorf("Server defaults mismatch: %+v", cfg.Server)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Search.FuzzyThreshold = 0.42
	cfg.Session.DebounceMs = 150
	cfg.Catalog.Path = "donors.csv"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Search.FuzzyThreshold != 0.42 {
		t.Errorf("Threshold did not roundtrip: %v", loaded.Search.FuzzyThreshold)
	}
	if loaded.Session.DebounceMs != 150 {
		t.Errorf("Debounce did not roundtrip: %d", loaded.Session.DebounceMs)
	}
	if loaded.Catalog.Path != "donors.csv" {
		t.Errorf("Catalog path did not roundtrip: %q", loaded.Catalog.Path)
	}
}

// A file with one badly typed value keeps that default while the other
// sections survive.
func TestPartialRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `[search]
fuzzy_threshold = "high"

[session]
debounce_ms = 150
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Recovery should not surface an error: %v", err)
	}
	if cfg.Search.FuzzyThreshold != 0.35 {
		t.Errorf("Bad value should keep the default 0.35, got %v", cfg.Search.FuzzyThreshold)
	}
	if cfg.Session.DebounceMs != 150 {
		t.Errorf("Valid section should survive, got %d", cfg.Session.DebounceMs)
	}
}

func TestInitConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if cfg.Search.FuzzyThreshold != 0.35 {
		t.Errorf("Fresh config should carry defaults, got %v", cfg.Search.FuzzyThreshold)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Config file should have been created: %v", err)
	}

	// A second init loads the file instead of rewriting it.
	if _, err := InitConfig(path); err != nil {
		t.Errorf("Reloading existing config failed: %v", err)
	}
}

func TestUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()

	debounce := 200
	threshold := 0.5
	if err := cfg.Update(path, &debounce, nil, &threshold); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if cfg.Session.DebounceMs != 200 || cfg.Search.FuzzyThreshold != 0.5 {
		t.Errorf("In-memory config not updated: %+v", cfg)
	}
	if cfg.Search.SuggestionLimit != 5 {
		t.Errorf("Nil field should stay untouched, got %d", cfg.Search.SuggestionLimit)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Load after update failed: %v", err)
	}
	if loaded.Session.DebounceMs != 200 || loaded.Search.FuzzyThreshold != 0.5 {
		t.Errorf("Persisted config mismatch: %+v", loaded)
	}
}
