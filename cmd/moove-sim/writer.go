package main

import (
	"os"

	"golang.org/x/term"

	"moove-sim/internal/config"
	"moove-sim/internal/sim"
)

type outputKind int

const (
	outputJSON outputKind = iota
	outputColor
	outputTUI
	outputGreptime
)

// stdoutIsTerminal is swapped in tests.
var stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

func greptimeEndpoint() string { return os.Getenv("GREPTIMEDB_ENDPOINT") }

// selectOutput picks GreptimeDB when an endpoint is configured. Otherwise a terminal gets the
// TUI, or coloured lines with --print-only, and a pipe gets JSON lines.
func selectOutput(printOnly, forceTUI bool) outputKind {
	if !printOnly && greptimeEndpoint() != "" {
		return outputGreptime
	}
	if forceTUI {
		return outputTUI
	}
	if stdoutIsTerminal() {
		if printOnly {
			return outputColor
		}
		return outputTUI
	}
	return outputJSON
}

func baseWriter(cfg *config.SimulationConfig, kind outputKind) (sim.TelemetryWriter, error) {
	switch kind {
	case outputGreptime:
		db := os.Getenv("GREPTIMEDB_DATABASE")
		if db == "" {
			db = "public"
		}
		return sim.NewGreptimeDBWriter(greptimeEndpoint(), db)
	case outputTUI:
		return sim.NewTUIWriter(cfg), nil
	case outputColor:
		return sim.NewColorStdoutWriter(cfg), nil
	default:
		return sim.NewJSONStdoutWriter(), nil
	}
}

// newWriters sets up the output writer plus the optional JSONL and CSV exports.
// It returns the writer and a cleanup function to close any resources.
func newWriters(cfg *config.SimulationConfig, kind outputKind, logFile, csvPath string) (sim.TelemetryWriter, func(), error) {
	writer, err := baseWriter(cfg, kind)
	if err != nil {
		return nil, nil, err
	}
	writers := []sim.TelemetryWriter{writer}
	closeAll := func() { sim.NewMultiWriter(writers...).Close() }

	if logFile != "" {
		fw, err := sim.NewFileWriter(logFile, logFile+".cows", logFile+".state", logFile+".events")
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		writers = append(writers, fw)
	}
	if csvPath != "" {
		cw, err := sim.NewCSVWriter(csvPath)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		writers = append(writers, cw)
	}
	if len(writers) == 1 {
		return writer, closeAll, nil
	}
	mw := sim.NewMultiWriter(writers...)
	return mw, func() { mw.Close() }, nil
}
