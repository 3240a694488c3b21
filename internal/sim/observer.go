package sim

import "moove-sim/internal/telemetry"

// Events returns a copy of the most recent drone events, oldest first.
func (s *Simulator) Events() []telemetry.DroneEventRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]telemetry.DroneEventRow, len(s.events))
	copy(events, s.events)
	return events
}

// recordEvent appends to the bounded event log. Callers hold s.mu.
func (s *Simulator) recordEvent(row telemetry.DroneEventRow) {
	if len(s.events) == eventLogSize {
		copy(s.events, s.events[1:])
		s.events = s.events[:eventLogSize-1]
	}
	s.events = append(s.events, row)
}
