package drone

import (
	"math/rand"

	"moove-sim/internal/geom"
)

// Params holds the static configuration of the controller.
type Params struct {
	Width, Height float64
	Base          geom.Point
	BaseRadius    float64
	Waypoints     []geom.Point

	ChargeRate    float64 // battery gained per tick at base
	DrainRate     float64 // battery lost per tick away from base
	LowBattery    float64 // below this the unit abandons its task
	DockDistance  float64 // charging approach stops inside this distance
	ApproachGain  float64 // fraction of the base offset covered per tick
	PursuitGain   float64 // fraction of the target offset covered per tick
	ArrivalRadius float64
	WanderSpread  float64 // full width of the random turn, radians
	EdgeMargin    float64
}

// DefaultParams returns the controller tuning for an 800x500 map.
func DefaultParams() Params {
	return Params{
		Width:      800,
		Height:     500,
		Base:       geom.Point{X: 160, Y: 450},
		BaseRadius: 15,
		Waypoints: []geom.Point{
			{X: 100, Y: 100}, {X: 700, Y: 100}, {X: 700, Y: 250},
			{X: 100, Y: 250}, {X: 100, Y: 400}, {X: 700, Y: 400},
		},
		ChargeRate:    0.5,
		DrainRate:     0.025,
		LowBattery:    20,
		DockDistance:  5,
		ApproachGain:  0.05,
		PursuitGain:   0.03,
		ArrivalRadius: 10,
		WanderSpread:  0.4,
		EdgeMargin:    40,
	}
}

// trigger is an input to the status state machine, evaluated once per tick before movement.
type trigger int

const (
	triggerNone trigger = iota
	triggerDock
	triggerTopUp
	triggerLowBattery
	triggerWake
)

type transition struct {
	to     Status
	action func(p *Params, u *Unit, c *ControlState) []Event
}

// transitions is evaluated in trigger order: the battery/location check always precedes
// movement, and a low battery overrides any pending action.
var transitions = map[trigger]transition{
	triggerDock: {to: StatusCharging, action: func(p *Params, u *Unit, _ *ControlState) []Event {
		u.Battery = min(100, u.Battery+p.ChargeRate)
		return nil
	}},
	triggerTopUp: {to: StatusIdle, action: func(_ *Params, u *Unit, _ *ControlState) []Event {
		u.Battery = 100
		return nil
	}},
	triggerLowBattery: {to: StatusCharging, action: func(_ *Params, u *Unit, c *ControlState) []Event {
		if !c.Pending() {
			return nil
		}
		ev := Event{Kind: EventLowBatteryOverride, Command: c.Command, Position: u.Position}
		c.clear()
		return []Event{ev}
	}},
	triggerWake: {to: StatusPatrolling},
}

// Controller advances the aerial unit one tick at a time. It is not safe for concurrent use;
// the tick driver owns it.
type Controller struct {
	params Params
	rand   *rand.Rand
}

// NewController returns a controller drawing wander angles from rng.
func NewController(p Params, rng *rand.Rand) *Controller {
	return &Controller{params: p, rand: rng}
}

// Params returns the controller configuration.
func (c *Controller) Params() Params { return c.params }

// Step runs one tick: battery and status first, then movement.
func (c *Controller) Step(u Unit, ctl ControlState) (Unit, ControlState, []Event) {
	events := c.fire(c.settle(&u, &ctl), &u, &ctl)
	events = append(events, c.move(&u, &ctl)...)
	return u, ctl, events
}

func (c *Controller) fire(t trigger, u *Unit, ctl *ControlState) []Event {
	tr, ok := transitions[t]
	if !ok {
		return nil
	}
	var events []Event
	if u.Status != tr.to {
		events = append(events, Event{Kind: EventStatusChanged, From: u.Status, To: tr.to, Position: u.Position})
		u.Status = tr.to
	}
	if tr.action != nil {
		events = append(events, tr.action(&c.params, u, ctl)...)
	}
	return events
}

// settle applies battery drain and picks the status trigger for this tick.
func (c *Controller) settle(u *Unit, ctl *ControlState) trigger {
	p := &c.params
	if u.Position.Dist(p.Base) < p.BaseRadius {
		if ctl.Pending() {
			return triggerNone
		}
		if u.Battery < 100 {
			return triggerDock
		}
		return triggerTopUp
	}
	if u.Status != StatusIdle {
		u.Battery = max(0, u.Battery-p.DrainRate)
	}
	if u.Battery < p.LowBattery {
		return triggerLowBattery
	}
	return triggerNone
}

func (c *Controller) move(u *Unit, ctl *ControlState) []Event {
	switch {
	case u.Status == StatusIdle:
		return nil
	case u.Status == StatusCharging:
		off := c.params.Base.Sub(u.Position)
		if off.Len() > c.params.DockDistance {
			u.Position = u.Position.Add(off.Scale(c.params.ApproachGain))
		}
		return nil
	case ctl.HasTarget:
		return c.pursue(u, ctl)
	default:
		c.wander(u)
		return nil
	}
}

func (c *Controller) pursue(u *Unit, ctl *ControlState) []Event {
	p := &c.params
	off := ctl.Target.Sub(u.Position)
	if off.Len() >= p.ArrivalRadius {
		u.Position = u.Position.Add(off.Scale(p.PursuitGain))
		return nil
	}
	if ctl.Command == CommandFullScan && ctl.ScanIndex < len(p.Waypoints)-1 {
		ctl.ScanIndex++
		ctl.Target = p.Waypoints[ctl.ScanIndex]
		return []Event{{Kind: EventWaypointReached, Command: ctl.Command, Waypoint: ctl.ScanIndex - 1, Position: u.Position}}
	}
	ev := Event{Kind: EventTargetReached, Position: u.Position}
	if ctl.Command != CommandNone {
		ev.Kind = EventCommandCompleted
		ev.Command = ctl.Command
	}
	ctl.clear()
	return []Event{ev}
}

func (c *Controller) wander(u *Unit) {
	p := &c.params
	v := u.Velocity.Rotate((c.rand.Float64() - 0.5) * p.WanderSpread)
	pos := u.Position.Add(v)
	if pos.X < p.EdgeMargin || pos.X > p.Width-p.EdgeMargin {
		v.X = -v.X
	}
	if pos.Y < p.EdgeMargin || pos.Y > p.Height-p.EdgeMargin {
		v.Y = -v.Y
	}
	u.Velocity = v
	u.Position = pos.Clamp(p.EdgeMargin, p.EdgeMargin, p.Width-p.EdgeMargin, p.Height-p.EdgeMargin)
}

// SetTarget assigns a manual target. It wakes the unit and clears any active command.
func (c *Controller) SetTarget(u Unit, ctl ControlState, target geom.Point) (Unit, ControlState) {
	c.fire(triggerWake, &u, &ctl)
	ctl.Command = CommandNone
	ctl.Target = target
	ctl.HasTarget = true
	return u, ctl
}

// Issue starts a command. The unit is woken and the command becomes active. For
// CommandHerdIsolated, isolated is the position to fly to; when nil the current target is kept
// and the command stays pending with nothing to complete. A pending command keeps the unit from
// docking at base until a new target or command replaces it or low battery clears it.
func (c *Controller) Issue(u Unit, ctl ControlState, cmd Command, isolated *geom.Point) (Unit, ControlState, error) {
	if _, err := ParseCommand(string(cmd)); err != nil {
		return u, ctl, err
	}
	c.fire(triggerWake, &u, &ctl)
	ctl.Command = cmd
	switch cmd {
	case CommandReturnToBase:
		ctl.Target, ctl.HasTarget = c.params.Base, true
	case CommandHerdIsolated:
		if isolated != nil {
			ctl.Target, ctl.HasTarget = *isolated, true
		}
	case CommandFullScan:
		ctl.ScanIndex = 0
		if len(c.params.Waypoints) > 0 {
			ctl.Target, ctl.HasTarget = c.params.Waypoints[0], true
		}
	}
	return u, ctl, nil
}
