package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const schemaPath = "../../schemas/simulation.cue"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simulation.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load("../../config/simulation.yaml", schemaPath)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	def := Default()
	if cfg.Map != def.Map || cfg.Base != def.Base || cfg.Herd != def.Herd || cfg.Drone != def.Drone {
		t.Errorf("shipped config drifted from defaults: %+v", cfg)
	}
	if cfg.Pasture.Path != DefaultPasturePath || cfg.Barn.Path != DefaultBarnPath {
		t.Errorf("unexpected paths %+v %+v", cfg.Pasture, cfg.Barn)
	}
	if cfg.TickInterval != 100*time.Millisecond || cfg.Report.Interval != 15*time.Second {
		t.Errorf("unexpected intervals %v %v", cfg.TickInterval, cfg.Report.Interval)
	}
	if len(cfg.ScanWaypoints) != 6 {
		t.Errorf("expected 6 waypoints, got %d", len(cfg.ScanWaypoints))
	}
}

func TestLoadPartialOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
herd:
  count: 12
  leaders: 2
  loners: 1
seed: 42
tick_interval: 250ms
scan_waypoints:
  - {x: 10, y: 20}
`)
	cfg, err := Load(path, schemaPath)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Herd.Count != 12 || cfg.Herd.Leaders != 2 || cfg.Herd.Loners != 1 {
		t.Errorf("herd not applied: %+v", cfg.Herd)
	}
	if cfg.Herd.SpawnInset != 100 || cfg.Map.Width != 800 {
		t.Errorf("defaults lost: %+v %+v", cfg.Herd, cfg.Map)
	}
	if cfg.Seed != 42 || cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("unexpected seed/tick %d %v", cfg.Seed, cfg.TickInterval)
	}
	if len(cfg.ScanWaypoints) != 1 || cfg.ScanWaypoints[0].Y != 20 {
		t.Errorf("waypoints not replaced: %+v", cfg.ScanWaypoints)
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown key":     "fleets: []\n",
		"battery range":   "drone:\n  battery: 140\n",
		"bad duration":    "tick_interval: soon\n",
		"negative count":  "herd:\n  count: -1\n",
		"nested unknown":  "base:\n  altitude: 3\n",
		"wrong type":      "map:\n  width: wide\n",
		"chance too high": "herd:\n  migration_chance: 2\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body), schemaPath); err == nil {
				t.Fatalf("expected schema error")
			}
		})
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Drone.ID != "drone-01" || cfg.Weather.Condition != "Sunny" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Herd.Leaders = 20
	cfg.Herd.Loners = 20
	cfg.ScanWaypoints = nil
	cfg.TickInterval = 0
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	for _, want := range []string{"exceed herd count", "scan waypoint", "tick interval"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must be valid: %v", err)
	}
}

func TestValidateWithCueMissingDefinition(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "empty.cue")
	if err := os.WriteFile(schema, []byte("#Other: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateWithCue(writeConfig(t, "seed: 1\n"), schema); err == nil {
		t.Fatalf("expected missing definition error")
	}
}
