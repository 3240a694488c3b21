package sim

import (
	"time"

	"moove-sim/internal/config"
	"moove-sim/internal/drone"
	"moove-sim/internal/geofence"
	"moove-sim/internal/geom"
	"moove-sim/internal/herd"
)

// Layout is the static part of the map, fixed at startup.
type Layout struct {
	Width       float64          `json:"width"`
	Height      float64          `json:"height"`
	PastureID   string           `json:"pasture_id"`
	PastureName string           `json:"pasture_name"`
	Pasture     geofence.Polygon `json:"pasture"`
	PastureArea float64          `json:"pasture_area"`
	Barn        geofence.Polygon `json:"barn"`
	Base        geom.Point       `json:"base"`
	BaseRadius  float64          `json:"base_radius"`
	Waypoints   []geom.Point     `json:"waypoints"`
}

func (l Layout) clone() Layout {
	l.Pasture = append(geofence.Polygon(nil), l.Pasture...)
	l.Barn = append(geofence.Polygon(nil), l.Barn...)
	l.Waypoints = append([]geom.Point(nil), l.Waypoints...)
	return l
}

// Snapshot is the immutable state published after each tick.
type Snapshot struct {
	Tick        int64          `json:"tick"`
	Time        time.Time      `json:"time"`
	Drone       drone.Unit     `json:"drone"`
	BatteryBand string         `json:"battery_band"`
	AtBase      bool           `json:"at_base"`
	Target      *geom.Point    `json:"target,omitempty"`
	Command     drone.Command  `json:"command,omitempty"`
	ScanIndex   int            `json:"scan_index"`
	Cows        []herd.Cow     `json:"cows"`
	Herd        herd.Metrics   `json:"herd"`
	HerdStatus  string         `json:"herd_status"`
	History     []float64      `json:"history"`
	Summary     herd.Summary   `json:"history_summary"`
	Report      string         `json:"report"`
	Weather     config.Weather `json:"weather"`
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	s.Cows = append([]herd.Cow(nil), s.Cows...)
	s.History = append([]float64(nil), s.History...)
	if s.Target != nil {
		t := *s.Target
		s.Target = &t
	}
	return s
}

// buildSnapshot assembles the published state. Callers hold s.mu.
func (s *Simulator) buildSnapshot(m herd.Metrics) Snapshot {
	snap := Snapshot{
		Tick:        s.ticks,
		Time:        s.now().UTC(),
		Drone:       s.unit,
		BatteryBand: drone.BatteryBand(s.unit.Battery),
		AtBase:      s.unit.AtBase(),
		Command:     s.control.Command,
		ScanIndex:   s.control.ScanIndex,
		Cows:        s.herd.Cows(),
		Herd:        m,
		HerdStatus:  m.Label,
		History:     s.herd.History().Values(),
		Summary:     s.herd.History().Summary(),
		Report:      s.reports.Current(),
		Weather:     s.cfg.Weather,
	}
	if s.control.HasTarget {
		t := s.control.Target
		snap.Target = &t
	}
	return snap
}

// Snapshot returns a copy of the most recently published state.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

// Subscribe streams snapshots. Slow readers only see the latest one. The returned func
// unsubscribes and closes the channel.
func (s *Simulator) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	var once bool
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if once {
			return
		}
		once = true
		delete(s.subs, ch)
		close(ch)
	}
}

// publish hands snap to subscribers without blocking. Callers hold s.mu.
func (s *Simulator) publish(snap Snapshot) {
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap.Clone():
		default:
		}
	}
}
