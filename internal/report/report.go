// Package report rotates the display-only field reports shown next to the map.
package report

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultInterval is how long each report stays on screen.
const DefaultInterval = 15 * time.Second

// Set is a named list of reports loaded from YAML.
type Set struct {
	Name     string        `yaml:"name,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
	Messages []string      `yaml:"messages"`
}

// BuiltIn returns the stock reports.
func BuiltIn() []string {
	return []string{
		"Herd cohesion is strong, with all animals grazing calmly within the designated pasture. No anomalies detected. Conditions are optimal.",
		"One cow is showing signs of isolation near the northern fence. Recommend visual inspection. The rest of the herd remains stable.",
		"The herd is slowly migrating towards the western pasture. All individuals are accounted for and movement patterns appear normal. Weather is clear.",
		"NOTICE: A cow has breached the geofence near the southern border. Immediate action may be required. Herd status is now critical.",
		"All systems are nominal. The herd is tightly grouped and calm. Drone battery is at 85% and continuing its patrol route as scheduled.",
	}
}

// Load reads a YAML report set from disk.
func Load(path string) (*Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reports: %w", err)
	}
	var s Set
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse reports: %w", err)
	}
	if len(s.Messages) == 0 {
		return nil, fmt.Errorf("parse reports: %s has no messages", path)
	}
	return &s, nil
}

// Rotator cycles through reports. It shares no state with the simulation tick.
type Rotator struct {
	mu   sync.RWMutex
	msgs []string
	idx  int
}

// NewRotator starts at the first message. An empty list falls back to BuiltIn.
func NewRotator(msgs []string) *Rotator {
	if len(msgs) == 0 {
		msgs = BuiltIn()
	}
	return &Rotator{msgs: append([]string(nil), msgs...)}
}

// Current returns the report on display.
func (r *Rotator) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.msgs[r.idx]
}

// Advance moves to the next report, wrapping around, and returns it.
func (r *Rotator) Advance() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idx = (r.idx + 1) % len(r.msgs)
	return r.msgs[r.idx]
}

// Run advances every interval until ctx is done.
func (r *Rotator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Advance()
		case <-ctx.Done():
			return
		}
	}
}
