package sim

import (
	"encoding/json"
	"errors"
	"os"

	"moove-sim/internal/telemetry"
)

// FileWriter writes drone, cow, herd state and event rows to JSONL files.
type FileWriter struct {
	files    []*os.File
	droneEnc *json.Encoder
	cowEnc   *json.Encoder
	stateEnc *json.Encoder
	eventEnc *json.Encoder
}

// NewFileWriter creates a FileWriter. cowPath, statePath or eventPath may be empty to skip
// those logs.
func NewFileWriter(dronePath, cowPath, statePath, eventPath string) (*FileWriter, error) {
	fw := &FileWriter{}
	open := func(path string) (*json.Encoder, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		fw.files = append(fw.files, f)
		return json.NewEncoder(f), nil
	}
	var err error
	if fw.droneEnc, err = open(dronePath); err != nil {
		return nil, err
	}
	if fw.cowEnc, err = open(cowPath); err != nil {
		fw.Close()
		return nil, err
	}
	if fw.stateEnc, err = open(statePath); err != nil {
		fw.Close()
		return nil, err
	}
	if fw.eventEnc, err = open(eventPath); err != nil {
		fw.Close()
		return nil, err
	}
	return fw, nil
}

// Write logs a single drone row.
func (f *FileWriter) Write(row telemetry.DroneRow) error {
	if f.droneEnc == nil {
		return nil
	}
	return f.droneEnc.Encode(row)
}

// WriteCows logs one row per animal, if enabled.
func (f *FileWriter) WriteCows(rows []telemetry.CowRow) error {
	if f.cowEnc == nil {
		return nil
	}
	for _, r := range rows {
		if err := f.cowEnc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteState logs a herd state row, if enabled.
func (f *FileWriter) WriteState(row telemetry.HerdStateRow) error {
	if f.stateEnc == nil {
		return nil
	}
	return f.stateEnc.Encode(row)
}

// WriteEvent logs a drone event row, if enabled.
func (f *FileWriter) WriteEvent(row telemetry.DroneEventRow) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(row)
}

// WriteEvents logs multiple drone events.
func (f *FileWriter) WriteEvents(rows []telemetry.DroneEventRow) error {
	for _, r := range rows {
		if err := f.WriteEvent(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var errs []error
	for _, file := range f.files {
		errs = append(errs, file.Close())
	}
	f.files = nil
	return errors.Join(errs...)
}
