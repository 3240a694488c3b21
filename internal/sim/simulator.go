// Simulator driving the aerial unit and the herd on a fixed tick
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"moove-sim/internal/config"
	"moove-sim/internal/drone"
	"moove-sim/internal/geofence"
	"moove-sim/internal/geom"
	"moove-sim/internal/herd"
	"moove-sim/internal/logging"
	"moove-sim/internal/report"
	"moove-sim/internal/telemetry"
)

const eventLogSize = 256

// Simulator owns the aerial unit, its control state and the herd. Only tick mutates them.
type Simulator struct {
	sessionID    string
	cfg          *config.SimulationConfig
	ctrl         *drone.Controller
	herd         *herd.Engine
	teleGen      *telemetry.Generator
	writer       TelemetryWriter
	reports      *report.Rotator
	layout       Layout
	tickInterval time.Duration
	rand         *rand.Rand
	now          func() time.Time

	intentMu sync.Mutex
	intents  []intent

	mu       sync.Mutex
	unit     drone.Unit
	control  drone.ControlState
	ticks    int64
	snapshot Snapshot
	events   []telemetry.DroneEventRow
	subs     map[chan Snapshot]struct{}
}

// NewSimulator builds the farm from cfg. A malformed pasture path is logged through the logger
// carried by ctx and the parsed prefix is used, so in the worst case every animal reads as
// escaped.
func NewSimulator(ctx context.Context, sessionID string, cfg *config.SimulationConfig, writer TelemetryWriter, tickInterval time.Duration) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	log := logging.FromContext(ctx)
	fence, err := geofence.ParsePath(cfg.Pasture.Path)
	if err != nil {
		log.Warn("pasture path is malformed", "pasture", cfg.Pasture.ID, "vertices", len(fence), "err", err)
	}
	barn, err := geofence.ParsePath(cfg.Barn.Path)
	if err != nil {
		log.Warn("barn path is malformed", "err", err)
	}

	dp := drone.DefaultParams()
	dp.Width, dp.Height = cfg.Map.Width, cfg.Map.Height
	dp.Base, dp.BaseRadius = cfg.Base.Center(), cfg.Base.Radius
	dp.Waypoints = append([]geom.Point(nil), cfg.ScanWaypoints...)

	hp := herd.DefaultParams()
	hp.Width, hp.Height = cfg.Map.Width, cfg.Map.Height
	hp.Count, hp.Leaders, hp.Loners = cfg.Herd.Count, cfg.Herd.Leaders, cfg.Herd.Loners
	hp.SpawnInset = cfg.Herd.SpawnInset
	hp.MigrationChance = cfg.Herd.MigrationChance

	if tickInterval <= 0 {
		tickInterval = cfg.TickInterval
	}

	s := &Simulator{
		sessionID:    sessionID,
		cfg:          cfg,
		ctrl:         drone.NewController(dp, rng),
		herd:         herd.NewEngine(hp, fence, rng),
		teleGen:      telemetry.NewGenerator(sessionID),
		writer:       writer,
		reports:      report.NewRotator(cfg.Report.Messages),
		tickInterval: tickInterval,
		rand:         rng,
		now:          time.Now,
		unit: drone.Unit{
			ID:             cfg.Drone.ID,
			Position:       geom.Point{X: cfg.Drone.X, Y: cfg.Drone.Y},
			Velocity:       cfg.Drone.Velocity,
			Status:         drone.StatusPatrolling,
			Battery:        cfg.Drone.Battery,
			PatrolInterval: cfg.Drone.PatrolInterval,
		},
		subs: make(map[chan Snapshot]struct{}),
	}
	s.layout = Layout{
		Width:       cfg.Map.Width,
		Height:      cfg.Map.Height,
		PastureID:   cfg.Pasture.ID,
		PastureName: cfg.Pasture.Name,
		Pasture:     fence,
		PastureArea: fence.Area(),
		Barn:        barn,
		Base:        cfg.Base.Center(),
		BaseRadius:  cfg.Base.Radius,
		Waypoints:   dp.Waypoints,
	}
	if ci, ok := writer.(CommandIssuer); ok {
		ci.SetCommandIssuer(s)
	}
	s.snapshot = s.buildSnapshot(herd.Metrics{
		Centroid: herd.Centroid(s.herd.Cows()),
		Counts:   herd.CountStatuses(s.herd.Cows()),
		Label:    herd.Label(s.herd.Cows()),
		Target:   s.herd.Target(),
	})
	return s
}

// SessionID identifies this run in every emitted row.
func (s *Simulator) SessionID() string { return s.sessionID }

// TickInterval is the period of Run.
func (s *Simulator) TickInterval() time.Duration { return s.tickInterval }

// Reports is the rotating report source shown in snapshots.
func (s *Simulator) Reports() *report.Rotator { return s.reports }

// Layout returns the static map description.
func (s *Simulator) Layout() Layout { return s.layout.clone() }
