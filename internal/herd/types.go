// Package herd moves the simulated cattle with a force model and classifies each animal
// against the herd center and the pasture fence.
package herd

import "moove-sim/internal/geom"

// Behavior is the fixed archetype of an animal.
type Behavior string

const (
	BehaviorLeader   Behavior = "leader"
	BehaviorFollower Behavior = "follower"
	BehaviorLoner    Behavior = "loner"
)

// Status is recomputed every tick from position alone.
type Status string

const (
	StatusGrazing  Status = "grazing"
	StatusIsolated Status = "isolated"
	StatusEscaped  Status = "escaped"
	// Reserved, never assigned by the engine.
	StatusMoving Status = "moving"
	StatusIdle   Status = "idle"
)

// Color is the map colour used for an animal in this status.
func (s Status) Color() string {
	switch s {
	case StatusEscaped:
		return "red"
	case StatusIsolated:
		return "yellow"
	default:
		return "green"
	}
}

// Cow is one herd member.
type Cow struct {
	ID       string     `json:"id"`
	Position geom.Point `json:"position"`
	Behavior Behavior   `json:"behavior"`
	Status   Status     `json:"status"`
}

// Params configures herd composition and the force model.
type Params struct {
	Width, Height float64

	Count      int
	Leaders    int
	Loners     int
	SpawnInset float64

	MigrationChance float64
	MigrationInset  float64

	RepelRadius      float64
	RepelStrength    float64
	SeparationRadius float64
	SeparationWeight float64

	IsolationDistance      float64
	LonerIsolationDistance float64

	HistorySize int
}

// DefaultParams returns the standard 30 head herd on an 800x500 map.
func DefaultParams() Params {
	return Params{
		Width:                  800,
		Height:                 500,
		Count:                  30,
		Leaders:                3,
		Loners:                 4,
		SpawnInset:             100,
		MigrationChance:        0.005,
		MigrationInset:         100,
		RepelRadius:            80,
		RepelStrength:          1,
		SeparationRadius:       15,
		SeparationWeight:       0.3,
		IsolationDistance:      100,
		LonerIsolationDistance: 150,
		HistorySize:            30,
	}
}

// weights scale the target, cohesion and wander forces.
type weights struct {
	target, cohesion, wander float64
}

var (
	defaultWeights  = weights{target: 0.0001, cohesion: 0.0001, wander: 0.1}
	leaderWeights   = weights{target: 0.0006, cohesion: 0.0001, wander: 0.15}
	followerWeights = weights{target: 0.0008, cohesion: 0.0002, wander: 0.1}
	lonerWeights    = weights{target: 0.00005, cohesion: 0.00005, wander: 0.5}
)

// Counts tallies animals per status.
type Counts struct {
	Grazing  int `json:"grazing"`
	Isolated int `json:"isolated"`
	Escaped  int `json:"escaped"`
}

// Metrics summarises one herd step.
type Metrics struct {
	Centroid        geom.Point `json:"centroid"`
	AverageDistance float64    `json:"average_distance"`
	Counts          Counts     `json:"counts"`
	Label           string     `json:"label"`
	Target          geom.Point `json:"target"`
	Migrated        bool       `json:"migrated"`
}
