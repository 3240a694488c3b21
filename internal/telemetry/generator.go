package telemetry

import (
	"time"

	"moove-sim/internal/drone"
	"moove-sim/internal/herd"
)

// Generator stamps simulation state into rows for one session.
type Generator struct {
	SessionID string
	now       func() time.Time
}

// NewGenerator creates a generator for the given session.
func NewGenerator(sessionID string) *Generator {
	return &Generator{SessionID: sessionID, now: time.Now}
}

// WithClock overrides the timestamp source.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

func (g *Generator) ts() time.Time { return g.now().UTC() }

// Drone converts the unit and its control state into a row.
func (g *Generator) Drone(u drone.Unit, ctl drone.ControlState) DroneRow {
	row := DroneRow{
		SessionID: g.SessionID,
		DroneID:   u.ID,
		X:         u.Position.X,
		Y:         u.Position.Y,
		VX:        u.Velocity.X,
		VY:        u.Velocity.Y,
		Battery:   u.Battery,
		Status:    string(u.Status),
		Command:   string(ctl.Command),
		HasTarget: ctl.HasTarget,
		Timestamp: g.ts(),
	}
	if ctl.HasTarget {
		row.TargetX, row.TargetY = ctl.Target.X, ctl.Target.Y
	}
	return row
}

// Cows converts the herd into one row per animal, sharing a timestamp.
func (g *Generator) Cows(cows []herd.Cow) []CowRow {
	ts := g.ts()
	rows := make([]CowRow, len(cows))
	for i, c := range cows {
		rows[i] = CowRow{
			SessionID: g.SessionID,
			CowID:     c.ID,
			Behavior:  string(c.Behavior),
			X:         c.Position.X,
			Y:         c.Position.Y,
			Status:    string(c.Status),
			Timestamp: ts,
		}
	}
	return rows
}

// HerdState converts the metrics of a herd step.
func (g *Generator) HerdState(tick int64, m herd.Metrics) HerdStateRow {
	return HerdStateRow{
		SessionID:       g.SessionID,
		Tick:            tick,
		CentroidX:       m.Centroid.X,
		CentroidY:       m.Centroid.Y,
		AverageDistance: m.AverageDistance,
		Grazing:         m.Counts.Grazing,
		Isolated:        m.Counts.Isolated,
		Escaped:         m.Counts.Escaped,
		Label:           m.Label,
		TargetX:         m.Target.X,
		TargetY:         m.Target.Y,
		Timestamp:       g.ts(),
	}
}

// Event converts a controller event.
func (g *Generator) Event(droneID string, ev drone.Event) DroneEventRow {
	return DroneEventRow{
		SessionID:  g.SessionID,
		DroneID:    droneID,
		EventType:  string(ev.Kind),
		FromStatus: string(ev.From),
		ToStatus:   string(ev.To),
		Command:    string(ev.Command),
		Waypoint:   ev.Waypoint,
		X:          ev.Position.X,
		Y:          ev.Position.Y,
		Timestamp:  g.ts(),
	}
}
