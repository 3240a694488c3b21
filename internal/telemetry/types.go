// Telemetry rows emitted once per tick, shaped for GreptimeDB tables
package telemetry

import (
	"os"
	"time"
)

// DroneRow is one aerial unit sample.
type DroneRow struct {
	SessionID string    `json:"session_id"` // TAG
	DroneID   string    `json:"drone_id"`   // TAG
	X         float64   `json:"x"`          // FIELD
	Y         float64   `json:"y"`          // FIELD
	VX        float64   `json:"vx"`         // FIELD
	VY        float64   `json:"vy"`         // FIELD
	Battery   float64   `json:"battery"`    // FIELD
	Status    string    `json:"status"`     // FIELD
	Command   string    `json:"command"`    // FIELD
	HasTarget bool      `json:"has_target"` // FIELD
	TargetX   float64   `json:"target_x"`   // FIELD
	TargetY   float64   `json:"target_y"`   // FIELD
	Timestamp time.Time `json:"ts"`         // TIME INDEX
}

// CowRow is one animal sample.
type CowRow struct {
	SessionID string    `json:"session_id"` // TAG
	CowID     string    `json:"cow_id"`     // TAG
	Behavior  string    `json:"behavior"`   // TAG
	X         float64   `json:"x"`          // FIELD
	Y         float64   `json:"y"`          // FIELD
	Status    string    `json:"status"`     // FIELD
	Timestamp time.Time `json:"ts"`         // TIME INDEX
}

// HerdStateRow captures the aggregate herd metrics of one tick.
type HerdStateRow struct {
	SessionID       string    `json:"session_id"`
	Tick            int64     `json:"tick"`
	CentroidX       float64   `json:"centroid_x"`
	CentroidY       float64   `json:"centroid_y"`
	AverageDistance float64   `json:"average_distance"`
	Grazing         int       `json:"grazing"`
	Isolated        int       `json:"isolated"`
	Escaped         int       `json:"escaped"`
	Label           string    `json:"label"`
	TargetX         float64   `json:"target_x"`
	TargetY         float64   `json:"target_y"`
	Timestamp       time.Time `json:"ts"`
}

// DroneEventRow records a controller transition or command lifecycle step.
type DroneEventRow struct {
	SessionID  string    `json:"session_id"`
	DroneID    string    `json:"drone_id"`
	EventType  string    `json:"event_type"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	Command    string    `json:"command,omitempty"`
	Waypoint   int       `json:"waypoint"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Timestamp  time.Time `json:"ts"`
}

func tableName(env, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

// Table names default to fixed values and can be overridden by environment variables.
var (
	DroneTableName      = tableName("GREPTIMEDB_TABLE", "drone_telemetry")
	CowTableName        = tableName("COW_TELEMETRY_TABLE", "cow_telemetry")
	HerdStateTableName  = tableName("HERD_STATE_TABLE", "herd_state")
	DroneEventTableName = tableName("DRONE_EVENT_TABLE", "drone_events")
)

func (DroneRow) TableName() string      { return DroneTableName }
func (CowRow) TableName() string        { return CowTableName }
func (HerdStateRow) TableName() string  { return HerdStateTableName }
func (DroneEventRow) TableName() string { return DroneEventTableName }
