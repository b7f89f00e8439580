package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marketlens/marketlens/internal/domain"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults().Validate() = %v, want nil", err)
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d duration
	if err := d.UnmarshalText([]byte("2m30s")); err != nil {
		t.Fatalf("UnmarshalText(2m30s) error: %v", err)
	}
	if d.Duration != 2*time.Minute+30*time.Second {
		t.Errorf("parsed %v, want 2m30s", d.Duration)
	}

	if err := d.UnmarshalText([]byte("not a duration")); err == nil {
		t.Error("UnmarshalText accepted garbage, want error")
	}

	text, err := duration{5 * time.Second}.MarshalText()
	if err != nil || string(text) != "5s" {
		t.Errorf("MarshalText() = %q, %v, want 5s", text, err)
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
mode = "track"
log_level = "debug"

[tracker]
interval = "30s"
limit_per_venue = 250

[limitless]
enabled = true

[[mappings]]
category = "Politics"
polymarket_id = "p1"
kalshi_id = "k1"
description = "curated pair"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MARKETLENS_KALSHI_API_KEY", "key-from-env")
	t.Setenv("MARKETLENS_TRACKER_INTERVAL", "45s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Mode != "track" {
		t.Errorf("Mode = %q, want track", cfg.Mode)
	}
	if cfg.Tracker.LimitPerVenue != 250 {
		t.Errorf("LimitPerVenue = %d, want 250", cfg.Tracker.LimitPerVenue)
	}
	// Env beats file.
	if cfg.Tracker.Interval.Duration != 45*time.Second {
		t.Errorf("Interval = %v, want 45s from env", cfg.Tracker.Interval.Duration)
	}
	if cfg.Kalshi.ApiKey != "key-from-env" {
		t.Errorf("ApiKey = %q, want env value", cfg.Kalshi.ApiKey)
	}
	// File values merge over defaults without clearing untouched sections.
	if !cfg.Limitless.Enabled {
		t.Error("Limitless.Enabled = false, want true from file")
	}
	if cfg.Polymarket.GammaHost == "" {
		t.Error("GammaHost lost its default during merge")
	}
	if len(cfg.Mappings) != 1 {
		t.Fatalf("Mappings len = %d, want 1", len(cfg.Mappings))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("Load() on a missing file = nil error, want error")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "sideways"
	cfg.LogLevel = "loud"
	cfg.Polymarket.Enabled = false
	cfg.Kalshi.Enabled = false
	cfg.Limitless.Enabled = false
	cfg.Matching.TitleRatio = 140
	cfg.Tracker.LimitPerVenue = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{
		"unknown mode",
		"unknown log_level",
		"at least one venue",
		"title_ratio",
		"limit_per_venue",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error missing %q:\n%v", want, err)
		}
	}
}

func TestMappingTableFromConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Mappings = []MappingConfig{
		{Category: "  Politics ", PolymarketID: "p1", KalshiID: "k1", Description: "pair"},
		{Category: "politics", LimitlessID: "l1"},
		{Category: "", PolymarketID: "orphan"},
		{Category: "crypto"},
	}

	table := cfg.MappingTable()

	if got := table.Categories(); len(got) != 1 || got[0] != "politics" {
		t.Fatalf("Categories() = %v, want [politics]", got)
	}
	mappings := table.MappingsFor("politics")
	if len(mappings) != 2 {
		t.Fatalf("politics mappings = %d, want 2", len(mappings))
	}
	if mappings[0].VenueIDs[domain.VenuePolymarket] != "p1" || mappings[0].VenueIDs[domain.VenueKalshi] != "k1" {
		t.Errorf("first mapping ids = %v", mappings[0].VenueIDs)
	}
	if mappings[1].VenueIDs[domain.VenueLimitless] != "l1" {
		t.Errorf("second mapping ids = %v", mappings[1].VenueIDs)
	}
}
