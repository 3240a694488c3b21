package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"moove-sim/internal/telemetry"
)

// JSONStdoutWriter prints telemetry, herd state and events as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
	// Cows enables one line per animal each tick.
	Cows bool
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) line(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// Write outputs a drone row in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.DroneRow) error {
	return w.line(row)
}

// WriteCows outputs one JSON line per animal when enabled.
func (w *JSONStdoutWriter) WriteCows(rows []telemetry.CowRow) error {
	if !w.Cows {
		return nil
	}
	for _, r := range rows {
		if err := w.line(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteState outputs the herd metrics in JSON format.
func (w *JSONStdoutWriter) WriteState(row telemetry.HerdStateRow) error {
	return w.line(row)
}

// WriteEvent outputs a drone event in JSON format.
func (w *JSONStdoutWriter) WriteEvent(row telemetry.DroneEventRow) error {
	return w.line(row)
}
