package sim

import (
	"context"
	"log/slog"
	"time"

	"moove-sim/internal/drone"
	"moove-sim/internal/logging"
	"moove-sim/internal/telemetry"
)

// Run starts the simulation loop and stops when the context is done.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "session_id", s.sessionID, "tick_interval", s.tickInterval)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			log.Info("stopping simulator", "ticks", s.Ticks())
			return
		}
	}
}

// Ticks returns how many ticks have completed.
func (s *Simulator) Ticks() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// tick applies queued requests, steps the aerial unit and then the herd, and publishes the
// result. Rows are handed to the writers after s.mu is released, so a slow sink never blocks
// readers. A tick always runs to completion; writer failures are logged only.
func (s *Simulator) tick(ctx context.Context) {
	log := logging.FromContext(ctx)
	out := s.advance(ctx, log)
	s.emit(log, out)
}

// emission is everything one tick hands to the writers.
type emission struct {
	drone  telemetry.DroneRow
	cows   []telemetry.CowRow
	state  telemetry.HerdStateRow
	events []telemetry.DroneEventRow
	snap   Snapshot
}

func (s *Simulator) advance(ctx context.Context, log *slog.Logger) emission {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticks++
	events := s.applyIntents(log)

	var stepEvents []drone.Event
	s.unit, s.control, stepEvents = s.ctrl.Step(s.unit, s.control)
	events = append(events, stepEvents...)

	metrics := s.herd.Step(s.unit.Position)
	if metrics.Migrated {
		log.Debug("herd migration target moved", "x", metrics.Target.X, "y", metrics.Target.Y)
	}

	rows := make([]telemetry.DroneEventRow, 0, len(events))
	for _, ev := range events {
		row := s.teleGen.Event(s.unit.ID, ev)
		rows = append(rows, row)
		s.recordEvent(row)
		logEvent(ctx, log, s.ticks, row)
	}

	snap := s.buildSnapshot(metrics)
	s.snapshot = snap
	s.publish(snap)
	return emission{
		drone:  s.teleGen.Drone(s.unit, s.control),
		cows:   s.teleGen.Cows(snap.Cows),
		state:  s.teleGen.HerdState(snap.Tick, snap.Herd),
		events: rows,
		snap:   snap.Clone(),
	}
}

func logEvent(ctx context.Context, log *slog.Logger, tick int64, row telemetry.DroneEventRow) {
	level := slog.LevelDebug
	switch drone.EventKind(row.EventType) {
	case drone.EventLowBatteryOverride, drone.EventCommandCompleted:
		level = slog.LevelInfo
	}
	log.Log(ctx, level, "drone event",
		"event", row.EventType, "drone_id", row.DroneID, "tick", tick,
		"from", row.FromStatus, "to", row.ToStatus, "command", row.Command)
}

// emit hands the tick's rows to every writer interface the configured writer supports. Only the
// Run goroutine calls it, so writers see ticks in order.
func (s *Simulator) emit(log *slog.Logger, out emission) {
	if s.writer == nil {
		return
	}
	if err := s.writer.Write(out.drone); err != nil {
		log.Error("write failed", "drone_id", out.drone.DroneID, "err", err)
	}
	if cw, ok := s.writer.(CowWriter); ok {
		if err := cw.WriteCows(out.cows); err != nil {
			log.Error("cow write failed", "err", err)
		}
	}
	if sw, ok := s.writer.(StateWriter); ok {
		if err := sw.WriteState(out.state); err != nil {
			log.Error("herd state write failed", "err", err)
		}
	}
	if len(out.events) > 0 {
		if bw, ok := s.writer.(batchEventWriter); ok {
			if err := bw.WriteEvents(out.events); err != nil {
				log.Error("event batch write failed", "err", err)
			}
		} else if ew, ok := s.writer.(EventWriter); ok {
			for _, e := range out.events {
				if err := ew.WriteEvent(e); err != nil {
					log.Error("event write failed", "event", e.EventType, "err", err)
				}
			}
		}
	}
	if snw, ok := s.writer.(SnapshotWriter); ok {
		if err := snw.WriteSnapshot(out.snap); err != nil {
			log.Error("snapshot write failed", "err", err)
		}
	}
}
