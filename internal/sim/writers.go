package sim

import (
	"moove-sim/internal/drone"
	"moove-sim/internal/geom"
	"moove-sim/internal/telemetry"
)

// TelemetryWriter is an interface to support different output writers.
type TelemetryWriter interface {
	Write(telemetry.DroneRow) error
}

// CowWriter receives one row per animal each tick.
type CowWriter interface {
	WriteCows([]telemetry.CowRow) error
}

// StateWriter receives the aggregate herd metrics of each tick.
type StateWriter interface {
	WriteState(telemetry.HerdStateRow) error
}

// EventWriter receives drone events.
type EventWriter interface {
	WriteEvent(telemetry.DroneEventRow) error
}

// Optional: event writers may support batch mode.
type batchEventWriter interface {
	WriteEvents([]telemetry.DroneEventRow) error
}

// SnapshotWriter receives the full published state of each tick.
type SnapshotWriter interface {
	WriteSnapshot(Snapshot) error
}

// Commander accepts operator requests. Requests are queued and applied at the start of the
// next tick in arrival order.
type Commander interface {
	SetTarget(geom.Point)
	IssueCommand(drone.Command) error
}

// CommandIssuer allows a writer with an interactive surface to send operator requests.
type CommandIssuer interface {
	SetCommandIssuer(Commander)
}
