// ColorStdoutWriter prints human-friendly, colorized telemetry to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"moove-sim/internal/config"
	"moove-sim/internal/drone"
	"moove-sim/internal/herd"
	"moove-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

var bandColors = map[string]string{"green": colorGreen, "yellow": colorYellow, "red": colorRed}

// ColorStdoutWriter prints telemetry rows using ANSI colors.
type ColorStdoutWriter struct {
	cfg  *config.SimulationConfig
	out  io.Writer
	once sync.Once
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{cfg: cfg, out: os.Stdout}
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}
	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Map:\t%.0fx%.0f\n", w.cfg.Map.Width, w.cfg.Map.Height)
	fmt.Fprintf(tw, "Pasture:\t%s (%s)\n", w.cfg.Pasture.Name, w.cfg.Pasture.ID)
	fmt.Fprintf(tw, "Herd:\t%d head, %d leaders, %d loners\n", w.cfg.Herd.Count, w.cfg.Herd.Leaders, w.cfg.Herd.Loners)
	fmt.Fprintf(tw, "Drone:\t%s\n", w.cfg.Drone.ID)
	fmt.Fprintf(tw, "Base:\t(%.0f,%.0f) r=%.0f\n", w.cfg.Base.X, w.cfg.Base.Y, w.cfg.Base.Radius)
	fmt.Fprintf(tw, "Weather:\t%s %.0f°C\n", w.cfg.Weather.Condition, w.cfg.Weather.Temperature)
	tw.Flush()
	fmt.Fprintln(w.out)
}

// Write outputs a single drone row in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.DroneRow) error {
	w.once.Do(w.printOverview)

	statusColor := colorGreen
	switch drone.Status(row.Status) {
	case drone.StatusCharging:
		statusColor = colorYellow
	case drone.StatusIdle:
		statusColor = colorGray
	}

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%sdrone=%s%s ", colorBlue, row.DroneID, colorReset)
	fmt.Fprintf(w.out, "%spos=(%.1f,%.1f)%s ", colorCyan, row.X, row.Y, colorReset)
	fmt.Fprintf(w.out, "%sbatt=%.1f%s ", bandColors[drone.BatteryBand(row.Battery)], row.Battery, colorReset)
	fmt.Fprintf(w.out, "%sstatus=%s%s", statusColor, row.Status, colorReset)
	if row.Command != "" {
		fmt.Fprintf(w.out, " %scmd=%s%s", colorMagenta, row.Command, colorReset)
	}
	if row.HasTarget {
		fmt.Fprintf(w.out, " %starget=(%.1f,%.1f)%s", colorMagenta, row.TargetX, row.TargetY, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteState prints herd metrics, coloured by the herd label.
func (w *ColorStdoutWriter) WriteState(row telemetry.HerdStateRow) error {
	w.once.Do(w.printOverview)
	labelColor := colorGreen
	switch row.Label {
	case herd.LabelEscaped:
		labelColor = colorRed
	case herd.LabelIsolated:
		labelColor = colorYellow
	}
	fmt.Fprintf(w.out, "%s[%s]%s %sHERD%s %s%s%s grazing=%d isolated=%d escaped=%d spread=%.1f\n",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, colorReset, labelColor, row.Label, colorReset,
		row.Grazing, row.Isolated, row.Escaped, row.AverageDistance)
	return nil
}

// WriteEvent prints a drone event.
func (w *ColorStdoutWriter) WriteEvent(e telemetry.DroneEventRow) error {
	w.once.Do(w.printOverview)
	fmt.Fprintf(w.out, "%s[%s]%s %sEVENT%s type=%s drone=%s",
		colorGray, e.Timestamp.Format(time.RFC3339), colorReset,
		colorMagenta, colorReset, e.EventType, e.DroneID)
	if e.ToStatus != "" {
		fmt.Fprintf(w.out, " %s->%s", e.FromStatus, e.ToStatus)
	}
	if e.Command != "" {
		fmt.Fprintf(w.out, " command=%s", e.Command)
	}
	fmt.Fprintln(w.out)
	return nil
}
