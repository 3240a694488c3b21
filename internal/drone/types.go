// Package drone implements the autonomous aerial unit: battery handling, status transitions,
// manual target pursuit, scripted commands and patrol wandering.
package drone

import (
	"errors"
	"fmt"
	"strings"

	"moove-sim/internal/geom"
)

// Status is the operating state of the unit.
type Status string

const (
	StatusPatrolling Status = "patrolling"
	StatusCharging   Status = "charging"
	StatusIdle       Status = "idle"
	// StatusHerding is reserved and never entered by the controller.
	StatusHerding Status = "herding"
)

// Command is a named multi-step directive.
type Command string

const (
	CommandNone         Command = ""
	CommandReturnToBase Command = "return-to-base"
	CommandHerdIsolated Command = "herd-isolated"
	CommandFullScan     Command = "full-scan"
)

// ErrUnknownCommand is returned by ParseCommand for names outside the command set.
var ErrUnknownCommand = errors.New("drone: unknown command")

// ParseCommand validates a command name.
func ParseCommand(name string) (Command, error) {
	switch c := Command(strings.ToLower(strings.TrimSpace(name))); c {
	case CommandReturnToBase, CommandHerdIsolated, CommandFullScan:
		return c, nil
	}
	return CommandNone, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

// Unit is a snapshot of the aerial unit.
type Unit struct {
	ID             string     `json:"id"`
	Position       geom.Point `json:"position"`
	Velocity       geom.Point `json:"velocity"`
	Status         Status     `json:"status"`
	Battery        float64    `json:"battery"`
	PatrolInterval int        `json:"patrol_interval"`
}

// AtBase reports whether the unit is resting at or heading for its base.
func (u Unit) AtBase() bool {
	return u.Status == StatusCharging || u.Status == StatusIdle
}

// ControlState is the pending action of the unit: an optional manual target and an optional
// active command. Only one pair is live at a time.
type ControlState struct {
	Target    geom.Point `json:"target"`
	HasTarget bool       `json:"has_target"`
	Command   Command    `json:"command,omitempty"`
	ScanIndex int        `json:"scan_index"`
}

// Pending reports whether a manual target or command is outstanding.
func (c ControlState) Pending() bool {
	return c.HasTarget || c.Command != CommandNone
}

func (c *ControlState) clear() {
	c.Target = geom.Point{}
	c.HasTarget = false
	c.Command = CommandNone
}

// BatteryBand classifies a battery level for display.
func BatteryBand(level float64) string {
	switch {
	case level > 50:
		return "green"
	case level > 20:
		return "yellow"
	default:
		return "red"
	}
}

// EventKind names a notable controller transition.
type EventKind string

const (
	EventStatusChanged      EventKind = "status_changed"
	EventLowBatteryOverride EventKind = "low_battery_override"
	EventWaypointReached    EventKind = "waypoint_reached"
	EventCommandCompleted   EventKind = "command_completed"
	EventTargetReached      EventKind = "target_reached"
	// Raised by the tick driver when it applies a queued request.
	EventTargetSet     EventKind = "target_set"
	EventCommandIssued EventKind = "command_issued"
)

// Event describes something that happened during a Step.
type Event struct {
	Kind     EventKind  `json:"kind"`
	From     Status     `json:"from,omitempty"`
	To       Status     `json:"to,omitempty"`
	Command  Command    `json:"command,omitempty"`
	Waypoint int        `json:"waypoint,omitempty"`
	Position geom.Point `json:"position"`
}
