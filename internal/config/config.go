// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"moove-sim/internal/geom"
)

// MapSize is the extent of the map in map units.
type MapSize struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Pasture is the fenced grazing area.
type Pasture struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Barn is drawn on the map only.
type Barn struct {
	Path string `yaml:"path"`
}

// Base is the charging station of the aerial unit.
type Base struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

// Center returns the station position.
func (b Base) Center() geom.Point { return geom.Point{X: b.X, Y: b.Y} }

// Herd defines the composition of the herd.
type Herd struct {
	Count           int     `yaml:"count"`
	Leaders         int     `yaml:"leaders"`
	Loners          int     `yaml:"loners"`
	SpawnInset      float64 `yaml:"spawn_inset"`
	MigrationChance float64 `yaml:"migration_chance"`
}

// Drone is the initial state of the aerial unit.
type Drone struct {
	ID             string     `yaml:"id"`
	X              float64    `yaml:"x"`
	Y              float64    `yaml:"y"`
	Battery        float64    `yaml:"battery"`
	PatrolInterval int        `yaml:"patrol_interval"`
	Velocity       geom.Point `yaml:"velocity"`
}

// Report configures the rotating field reports.
type Report struct {
	Interval time.Duration `yaml:"interval"`
	Messages []string      `yaml:"messages,omitempty"`
}

// Weather is static display data.
type Weather struct {
	Condition   string  `yaml:"condition"`
	Temperature float64 `yaml:"temperature"`
}

// SimulationConfig is the root configuration.
type SimulationConfig struct {
	Map           MapSize       `yaml:"map"`
	Pasture       Pasture       `yaml:"pasture"`
	Barn          Barn          `yaml:"barn"`
	Base          Base          `yaml:"base"`
	ScanWaypoints []geom.Point  `yaml:"scan_waypoints"`
	Herd          Herd          `yaml:"herd"`
	Drone         Drone         `yaml:"drone"`
	TickInterval  time.Duration `yaml:"tick_interval"`
	Seed          int64         `yaml:"seed"`
	Report        Report        `yaml:"report"`
	Weather       Weather       `yaml:"weather"`
}

// DefaultPasturePath outlines the main pasture.
const DefaultPasturePath = "M40,60 C150,20 300,80 450,50 S650,40 760,80 C790,200 750,400 720,480 L180,480 C130,420 80,450 40,380 C10,250 10,150 40,60 Z"

// DefaultBarnPath outlines the barn.
const DefaultBarnPath = "M50,470 L50,420 L90,400 L130,420 L130,470 Z"

// Default returns the stock farm layout. Loaded files are applied on top of it.
func Default() *SimulationConfig {
	return &SimulationConfig{
		Map:     MapSize{Width: 800, Height: 500},
		Pasture: Pasture{ID: "main-pasture", Name: "Main Pasture", Path: DefaultPasturePath},
		Barn:    Barn{Path: DefaultBarnPath},
		Base:    Base{X: 160, Y: 450, Radius: 15},
		ScanWaypoints: []geom.Point{
			{X: 100, Y: 100}, {X: 700, Y: 100}, {X: 700, Y: 250},
			{X: 100, Y: 250}, {X: 100, Y: 400}, {X: 700, Y: 400},
		},
		Herd:         Herd{Count: 30, Leaders: 3, Loners: 4, SpawnInset: 100, MigrationChance: 0.005},
		Drone:        Drone{ID: "drone-01", X: 400, Y: 250, Battery: 100, PatrolInterval: 30, Velocity: geom.Point{X: 1, Y: 1}},
		TickInterval: 100 * time.Millisecond,
		Report:       Report{Interval: 15 * time.Second},
		Weather:      Weather{Condition: "Sunny", Temperature: 18},
	}
}

// Load reads configPath over Default, validating it against the CUE schema first when
// cueSchemaPath is set. An empty configPath yields the validated defaults.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	cfg := Default()
	if configPath != "" {
		if cueSchemaPath != "" {
			if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
				return nil, err
			}
		}
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
