package telemetry

import (
	"testing"
	"time"

	"moove-sim/internal/drone"
	"moove-sim/internal/geom"
	"moove-sim/internal/herd"
)

var fixed = time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))

func TestDroneRow(t *testing.T) {
	gen := NewGenerator("session-1").WithClock(func() time.Time { return fixed })
	u := drone.Unit{ID: "drone-01", Position: geom.Point{X: 10, Y: 20}, Velocity: geom.Point{X: 1, Y: -1}, Status: drone.StatusPatrolling, Battery: 88}

	row := gen.Drone(u, drone.ControlState{})
	if row.SessionID != "session-1" || row.DroneID != "drone-01" {
		t.Errorf("unexpected ids %+v", row)
	}
	if row.X != 10 || row.Y != 20 || row.VX != 1 || row.VY != -1 || row.Battery != 88 {
		t.Errorf("unexpected kinematics %+v", row)
	}
	if row.HasTarget || row.TargetX != 0 || row.Command != "" {
		t.Errorf("expected no target, got %+v", row)
	}
	if !row.Timestamp.Equal(fixed) || row.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp %v not normalised to UTC", row.Timestamp)
	}

	row = gen.Drone(u, drone.ControlState{HasTarget: true, Target: geom.Point{X: 5, Y: 6}, Command: drone.CommandFullScan})
	if !row.HasTarget || row.TargetX != 5 || row.TargetY != 6 || row.Command != "full-scan" {
		t.Errorf("unexpected target fields %+v", row)
	}
}

func TestCowRowsShareTimestamp(t *testing.T) {
	calls := 0
	gen := NewGenerator("s").WithClock(func() time.Time { calls++; return fixed.Add(time.Duration(calls) * time.Second) })
	rows := gen.Cows([]herd.Cow{
		{ID: "cow-1", Behavior: herd.BehaviorLeader, Status: herd.StatusGrazing, Position: geom.Point{X: 1, Y: 2}},
		{ID: "cow-2", Behavior: herd.BehaviorLoner, Status: herd.StatusEscaped, Position: geom.Point{X: 3, Y: 4}},
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[0].Timestamp.Equal(rows[1].Timestamp) {
		t.Errorf("rows of one tick must share a timestamp")
	}
	if rows[1].Behavior != "loner" || rows[1].Status != "escaped" || rows[1].X != 3 {
		t.Errorf("unexpected row %+v", rows[1])
	}
}

func TestHerdStateAndEventRows(t *testing.T) {
	gen := NewGenerator("s").WithClock(func() time.Time { return fixed })
	hs := gen.HerdState(7, herd.Metrics{
		Centroid:        geom.Point{X: 400, Y: 250},
		AverageDistance: 123.4,
		Counts:          herd.Counts{Grazing: 28, Isolated: 1, Escaped: 1},
		Label:           herd.LabelEscaped,
		Target:          geom.Point{X: 560, Y: 350},
	})
	if hs.Tick != 7 || hs.CentroidX != 400 || hs.Escaped != 1 || hs.Label != "Cow Escaped!" || hs.TargetY != 350 {
		t.Errorf("unexpected herd state %+v", hs)
	}
	ev := gen.Event("drone-01", drone.Event{Kind: drone.EventStatusChanged, From: drone.StatusPatrolling, To: drone.StatusCharging, Position: geom.Point{X: 1, Y: 2}})
	if ev.EventType != "status_changed" || ev.FromStatus != "patrolling" || ev.ToStatus != "charging" || ev.X != 1 {
		t.Errorf("unexpected event row %+v", ev)
	}
}

func TestTableNames(t *testing.T) {
	if (DroneRow{}).TableName() == "" || (CowRow{}).TableName() == "" || (HerdStateRow{}).TableName() == "" || (DroneEventRow{}).TableName() == "" {
		t.Fatalf("table names must not be empty")
	}
	if tableName("MOOVE_SIM_UNSET_TABLE_ENV", "fallback") != "fallback" {
		t.Fatalf("expected fallback")
	}
	t.Setenv("MOOVE_SIM_TABLE_ENV", "custom")
	if tableName("MOOVE_SIM_TABLE_ENV", "fallback") != "custom" {
		t.Fatalf("expected env override")
	}
}
