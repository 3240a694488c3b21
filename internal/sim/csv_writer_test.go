package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"moove-sim/internal/telemetry"
)

func TestCSVWriterHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "herd.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ts := time.Unix(0, 0).UTC()
	for i := int64(1); i <= 2; i++ {
		if err := w.WriteState(telemetry.HerdStateRow{SessionID: "s1", Tick: i, Grazing: 30, Label: "All Calm", Timestamp: ts}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Write(telemetry.DroneRow{}); err != nil {
		t.Fatalf("drone rows should be ignored: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "ts,session_id,tick,") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "s1,2,") || !strings.Contains(lines[2], "All Calm") {
		t.Fatalf("row = %q", lines[2])
	}
	if strings.Count(string(data), "session_id") != 1 {
		t.Fatalf("header repeated")
	}
}
