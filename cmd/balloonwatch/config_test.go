package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tinytelemetry/balloonwatch/internal/dashboard"
	"github.com/tinytelemetry/balloonwatch/internal/model"
)

func TestLoadCLIConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadCLIConfig("")
	if err != nil {
		t.Fatalf("loadCLIConfig: %v", err)
	}
	if cfg.Endpoint != model.DefaultEndpoint {
		t.Errorf("endpoint = %q, want %q", cfg.Endpoint, model.DefaultEndpoint)
	}
	if cfg.RequestTimeout != 0 {
		t.Errorf("request timeout = %s, want none", cfg.RequestTimeout)
	}
	if cfg.RacePolicy != "latest-request" || cfg.Policy != dashboard.LatestRequest {
		t.Errorf("race policy = %q (%v)", cfg.RacePolicy, cfg.Policy)
	}
	if cfg.Location != model.DefaultLocation {
		t.Errorf("location = %q", cfg.Location)
	}
}

func TestLoadCLIConfig_FileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yml")
	data := []byte("endpoint: http://localhost:8080/\nrequest-timeout: 5s\nlocation: Oakland\naltitude-chart: true\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BALLOONWATCH_RACE_POLICY", "last-completion")

	cfg, err := loadCLIConfig(path)
	if err != nil {
		t.Fatalf("loadCLIConfig: %v", err)
	}
	if cfg.Endpoint != "http://localhost:8080/" || cfg.Location != "Oakland" || !cfg.AltitudeChart {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("request timeout = %s, want 5s", cfg.RequestTimeout)
	}
	if cfg.RacePolicy != "last-completion" || cfg.Policy != dashboard.LastCompletion {
		t.Errorf("race policy = %q (%v), want env override", cfg.RacePolicy, cfg.Policy)
	}
}

func TestLoadCLIConfig_InvalidRacePolicy(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BALLOONWATCH_RACE_POLICY", "first-wins")

	if _, err := loadCLIConfig(""); err == nil {
		t.Fatal("expected error for unknown race policy")
	}
}
