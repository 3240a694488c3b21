package sim

import (
	"log/slog"

	"moove-sim/internal/drone"
	"moove-sim/internal/geom"
	"moove-sim/internal/herd"
)

// intent is a queued operator request: either a map target or a command.
type intent struct {
	target  *geom.Point
	command drone.Command
}

// SetTarget queues a manual target. Coordinates are not range checked.
func (s *Simulator) SetTarget(p geom.Point) {
	s.enqueue(intent{target: &p})
}

// IssueCommand queues a command after validating its name.
func (s *Simulator) IssueCommand(cmd drone.Command) error {
	if _, err := drone.ParseCommand(string(cmd)); err != nil {
		return err
	}
	s.enqueue(intent{command: cmd})
	return nil
}

func (s *Simulator) enqueue(in intent) {
	s.intentMu.Lock()
	s.intents = append(s.intents, in)
	s.intentMu.Unlock()
}

func (s *Simulator) drainIntents() []intent {
	s.intentMu.Lock()
	defer s.intentMu.Unlock()
	out := s.intents
	s.intents = nil
	return out
}

// applyIntents runs queued requests through the controller in arrival order, so the latest
// request wins. Callers hold s.mu.
func (s *Simulator) applyIntents(log *slog.Logger) []drone.Event {
	var events []drone.Event
	for _, in := range s.drainIntents() {
		if in.target != nil {
			s.unit, s.control = s.ctrl.SetTarget(s.unit, s.control, *in.target)
			events = append(events, drone.Event{Kind: drone.EventTargetSet, Position: *in.target})
			log.Debug("manual target set", "drone_id", s.unit.ID, "x", in.target.X, "y", in.target.Y)
			continue
		}
		var isolated *geom.Point
		if in.command == drone.CommandHerdIsolated {
			if c, ok := herd.FarthestIsolated(s.herd.Cows()); ok {
				isolated = &c.Position
			}
		}
		unit, ctl, err := s.ctrl.Issue(s.unit, s.control, in.command, isolated)
		if err != nil {
			log.Error("command rejected", "command", in.command, "err", err)
			continue
		}
		s.unit, s.control = unit, ctl
		ev := drone.Event{Kind: drone.EventCommandIssued, Command: in.command, Position: s.unit.Position}
		if ctl.HasTarget {
			ev.Position = ctl.Target
		}
		events = append(events, ev)
		log.Info("command issued", "drone_id", s.unit.ID, "command", in.command, "has_target", ctl.HasTarget)
	}
	return events
}
