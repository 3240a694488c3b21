package sim

import (
	"errors"

	"moove-sim/internal/telemetry"
)

// MultiWriter fans rows out to multiple writers. Each optional interface is forwarded only
// to writers that implement it.
type MultiWriter struct {
	writers []TelemetryWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws ...TelemetryWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// Write sends a drone row to all writers.
func (mw *MultiWriter) Write(row telemetry.DroneRow) error {
	var errs []error
	for _, w := range mw.writers {
		errs = append(errs, w.Write(row))
	}
	return errors.Join(errs...)
}

// WriteCows sends cow rows to writers that accept them.
func (mw *MultiWriter) WriteCows(rows []telemetry.CowRow) error {
	var errs []error
	for _, w := range mw.writers {
		if cw, ok := w.(CowWriter); ok {
			errs = append(errs, cw.WriteCows(rows))
		}
	}
	return errors.Join(errs...)
}

// WriteState sends a herd state row to writers that accept it.
func (mw *MultiWriter) WriteState(row telemetry.HerdStateRow) error {
	var errs []error
	for _, w := range mw.writers {
		if sw, ok := w.(StateWriter); ok {
			errs = append(errs, sw.WriteState(row))
		}
	}
	return errors.Join(errs...)
}

// WriteEvents sends drone events to writers that accept them, using batch mode if supported.
func (mw *MultiWriter) WriteEvents(rows []telemetry.DroneEventRow) error {
	var errs []error
	for _, w := range mw.writers {
		if bw, ok := w.(batchEventWriter); ok {
			errs = append(errs, bw.WriteEvents(rows))
			continue
		}
		if ew, ok := w.(EventWriter); ok {
			for _, r := range rows {
				errs = append(errs, ew.WriteEvent(r))
			}
		}
	}
	return errors.Join(errs...)
}

// WriteEvent sends a single drone event.
func (mw *MultiWriter) WriteEvent(row telemetry.DroneEventRow) error {
	return mw.WriteEvents([]telemetry.DroneEventRow{row})
}

// WriteSnapshot sends the published state to writers that render it.
func (mw *MultiWriter) WriteSnapshot(s Snapshot) error {
	var errs []error
	for _, w := range mw.writers {
		if sw, ok := w.(SnapshotWriter); ok {
			errs = append(errs, sw.WriteSnapshot(s))
		}
	}
	return errors.Join(errs...)
}

// SetCommandIssuer forwards the issuer to interactive writers.
func (mw *MultiWriter) SetCommandIssuer(c Commander) {
	for _, w := range mw.writers {
		if ci, ok := w.(CommandIssuer); ok {
			ci.SetCommandIssuer(c)
		}
	}
}

// Close closes every writer that holds resources.
func (mw *MultiWriter) Close() error {
	var errs []error
	for _, w := range mw.writers {
		if c, ok := w.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
