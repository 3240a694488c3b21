package sim

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"moove-sim/internal/telemetry"
)

func readLines(t *testing.T, path string) [][]byte {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	var lines [][]byte
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, append([]byte(nil), sc.Bytes()...))
	}
	return lines
}

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	ts := time.Unix(0, 0).UTC()
	paths := map[string]string{
		"drone": filepath.Join(dir, "drone.jsonl"),
		"cow":   filepath.Join(dir, "cows.jsonl"),
		"state": filepath.Join(dir, "state.jsonl"),
		"event": filepath.Join(dir, "events.jsonl"),
	}
	fw, err := NewFileWriter(paths["drone"], paths["cow"], paths["state"], paths["event"])
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := fw.Write(telemetry.DroneRow{DroneID: "drone-01", Battery: 55, Timestamp: ts}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fw.WriteCows([]telemetry.CowRow{{CowID: "cow-1"}, {CowID: "cow-2"}}); err != nil {
		t.Fatalf("cows: %v", err)
	}
	if err := fw.WriteState(telemetry.HerdStateRow{Tick: 3, Label: "All Calm"}); err != nil {
		t.Fatalf("state: %v", err)
	}
	if err := fw.WriteEvents([]telemetry.DroneEventRow{{EventType: "target_set"}, {EventType: "target_reached"}}); err != nil {
		t.Fatalf("events: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var d telemetry.DroneRow
	lines := readLines(t, paths["drone"])
	if len(lines) != 1 {
		t.Fatalf("drone lines = %d", len(lines))
	}
	if err := json.Unmarshal(lines[0], &d); err != nil || d.Battery != 55 || !d.Timestamp.Equal(ts) {
		t.Fatalf("drone row %+v err %v", d, err)
	}
	if n := len(readLines(t, paths["cow"])); n != 2 {
		t.Fatalf("cow lines = %d", n)
	}
	var st telemetry.HerdStateRow
	if err := json.Unmarshal(readLines(t, paths["state"])[0], &st); err != nil || st.Tick != 3 {
		t.Fatalf("state row %+v err %v", st, err)
	}
	if n := len(readLines(t, paths["event"])); n != 2 {
		t.Fatalf("event lines = %d", n)
	}
}

func TestFileWriterOptionalLogs(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWriter(filepath.Join(dir, "drone.jsonl"), "", "", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer fw.Close()
	if err := fw.WriteCows([]telemetry.CowRow{{CowID: "cow-1"}}); err != nil {
		t.Fatalf("cows: %v", err)
	}
	if err := fw.WriteState(telemetry.HerdStateRow{}); err != nil {
		t.Fatalf("state: %v", err)
	}
	if err := fw.WriteEvent(telemetry.DroneEventRow{}); err != nil {
		t.Fatalf("event: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the drone log, got %d files", len(entries))
	}
}

func TestFileWriterBadPath(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewFileWriter(filepath.Join(dir, "drone.jsonl"), filepath.Join(dir, "missing", "cows.jsonl"), "", ""); err == nil {
		t.Fatalf("expected error for unwritable path")
	}
}
