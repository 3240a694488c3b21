package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"moove-sim/internal/telemetry"
)

// ReplayLog re-emits drone rows from r, spacing them by their recorded timestamps divided by
// speed. A speed <= 0 replays without delay. It returns how many rows were written.
func ReplayLog(ctx context.Context, r io.Reader, writer TelemetryWriter, speed float64) (int, error) {
	dec := json.NewDecoder(r)
	var prev time.Time
	n := 0
	for {
		var row telemetry.DroneRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				return n, nil
			}
			return n, fmt.Errorf("decode row %d: %w", n+1, err)
		}
		if gap := replayGap(prev, row.Timestamp, speed); gap > 0 {
			t := time.NewTimer(gap)
			select {
			case <-ctx.Done():
				t.Stop()
				return n, ctx.Err()
			case <-t.C:
			}
		} else if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := writer.Write(row); err != nil {
			return n, err
		}
		n++
		prev = row.Timestamp
	}
}

func replayGap(prev, next time.Time, speed float64) time.Duration {
	if prev.IsZero() || speed <= 0 {
		return 0
	}
	return time.Duration(float64(next.Sub(prev)) / speed)
}

// ReplayLogFile replays the JSONL drone log at path.
func ReplayLogFile(ctx context.Context, path string, writer TelemetryWriter, speed float64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ReplayLog(ctx, f, writer, speed)
}
