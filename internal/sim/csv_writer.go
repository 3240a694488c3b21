package sim

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"moove-sim/internal/telemetry"
)

// herdStateCSV is the CSV shape of a herd state row.
type herdStateCSV struct {
	Timestamp       string  `csv:"ts"`
	SessionID       string  `csv:"session_id"`
	Tick            int64   `csv:"tick"`
	CentroidX       float64 `csv:"centroid_x"`
	CentroidY       float64 `csv:"centroid_y"`
	AverageDistance float64 `csv:"average_distance"`
	Grazing         int     `csv:"grazing"`
	Isolated        int     `csv:"isolated"`
	Escaped         int     `csv:"escaped"`
	Label           string  `csv:"label"`
	TargetX         float64 `csv:"target_x"`
	TargetY         float64 `csv:"target_y"`
}

// CSVWriter exports herd state rows as CSV. The header is written with the first row.
// Drone rows are ignored.
type CSVWriter struct {
	mu      sync.Mutex
	out     io.Writer
	closer  io.Closer
	started bool
}

// NewCSVWriter creates path and writes herd state rows to it.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &CSVWriter{out: f, closer: f}, nil
}

// Write ignores drone rows.
func (w *CSVWriter) Write(telemetry.DroneRow) error { return nil }

// WriteState appends one CSV record.
func (w *CSVWriter) WriteState(row telemetry.HerdStateRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	recs := []herdStateCSV{{
		Timestamp:       row.Timestamp.UTC().Format(time.RFC3339Nano),
		SessionID:       row.SessionID,
		Tick:            row.Tick,
		CentroidX:       row.CentroidX,
		CentroidY:       row.CentroidY,
		AverageDistance: row.AverageDistance,
		Grazing:         row.Grazing,
		Isolated:        row.Isolated,
		Escaped:         row.Escaped,
		Label:           row.Label,
		TargetX:         row.TargetX,
		TargetY:         row.TargetY,
	}}
	if !w.started {
		w.started = true
		return gocsv.Marshal(recs, w.out)
	}
	return gocsv.MarshalWithoutHeaders(recs, w.out)
}

// Close closes the underlying file.
func (w *CSVWriter) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
