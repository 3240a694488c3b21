package sim

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/muesli/reflow/wordwrap"

	"moove-sim/internal/config"
	"moove-sim/internal/drone"
	"moove-sim/internal/geofence"
	"moove-sim/internal/geom"
	"moove-sim/internal/herd"
	"moove-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the event viewport.
type logMsg struct{ line string }

// snapshotMsg carries the state published by a tick.
type snapshotMsg struct{ Snapshot }

type setIssuerMsg struct{ c Commander }

const (
	maxLogLines = 500
	graphHeight = 6
)

var (
	styleGreen  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleYellow = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleRed    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleCyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	styleGray   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleBold   = lipgloss.NewStyle().Bold(true)
)

func colorStyle(name string) lipgloss.Style {
	switch name {
	case "red":
		return styleRed
	case "yellow":
		return styleYellow
	default:
		return styleGreen
	}
}

// TUIWriter renders the farm using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.SimulationConfig) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements TelemetryWriter. Drone rows are rendered from snapshots instead.
func (w *TUIWriter) Write(telemetry.DroneRow) error { return nil }

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(e telemetry.DroneEventRow) error {
	line := fmt.Sprintf("%s %s", styleGray.Render(e.Timestamp.Format(time.TimeOnly)), e.EventType)
	if e.ToStatus != "" {
		line += fmt.Sprintf(" %s→%s", e.FromStatus, e.ToStatus)
	}
	if e.Command != "" {
		line += " " + styleCyan.Render(e.Command)
	}
	if drone.EventKind(e.EventType) == drone.EventWaypointReached {
		line += fmt.Sprintf(" #%d", e.Waypoint+1)
	}
	w.program.Send(logMsg{line: line})
	return nil
}

// WriteSnapshot implements SnapshotWriter.
func (w *TUIWriter) WriteSnapshot(s Snapshot) error {
	w.program.Send(snapshotMsg{s})
	return nil
}

// SetCommandIssuer lets the keyboard drive the aerial unit.
func (w *TUIWriter) SetCommandIssuer(c Commander) {
	w.program.Send(setIssuerMsg{c})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	cfg         *config.SimulationConfig
	fence       geofence.Polygon
	table       table.Model
	vp          viewport.Model
	targetInput textinput.Model
	targetOpen  bool
	issuer      Commander
	snap        Snapshot
	haveSnap    bool
	logs        []string
	status      string
	width       int
	height      int
	wrap        bool
	autoscroll  bool
	showMap     bool
	help        bool
}

func newTUIModel(cfg *config.SimulationConfig) tuiModel {
	cols := []table.Column{
		{Title: "Cow", Width: 8},
		{Title: "Behavior", Width: 9},
		{Title: "Status", Width: 9},
		{Title: "X", Width: 6},
		{Title: "Y", Width: 6},
	}
	ti := textinput.New()
	ti.Placeholder = "x,y"
	ti.CharLimit = 32
	fence, _ := geofence.ParsePath(cfg.Pasture.Path)
	return tuiModel{
		cfg:         cfg,
		fence:       fence,
		table:       table.New(table.WithColumns(cols), table.WithHeight(6)),
		vp:          viewport.New(0, 0),
		targetInput: ti,
		autoscroll:  true,
		showMap:     true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.vp.Height = max(3, msg.Height/5)
		m.refreshViewport()
	case tea.KeyMsg:
		if m.targetOpen {
			switch msg.Type {
			case tea.KeyEnter:
				p, err := parseTargetInput(m.targetInput.Value())
				switch {
				case err != nil:
					m.status = err.Error()
				case m.issuer != nil:
					m.issuer.SetTarget(p)
					m.status = fmt.Sprintf("target (%.0f,%.0f)", p.X, p.Y)
				}
				m.targetOpen = false
			case tea.KeyEsc:
				m.targetOpen = false
			default:
				var cmd tea.Cmd
				m.targetInput, cmd = m.targetInput.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		if m.help {
			m.help = false
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.issue(drone.CommandReturnToBase)
		case "h":
			m.issue(drone.CommandHerdIsolated)
		case "s":
			m.issue(drone.CommandFullScan)
		case "t":
			m.targetOpen = true
			m.targetInput.SetValue("")
			m.targetInput.Focus()
		case "m":
			m.showMap = !m.showMap
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
		case "a":
			m.autoscroll = !m.autoscroll
		case "?":
			m.help = true
		default:
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		m.refreshViewport()
	case snapshotMsg:
		m.snap = msg.Snapshot
		m.haveSnap = true
		m.table.SetRows(flaggedRows(msg.Cows))
	case setIssuerMsg:
		m.issuer = msg.c
	}
	return m, nil
}

func (m *tuiModel) issue(cmd drone.Command) {
	if m.issuer == nil {
		m.status = "commands unavailable"
		return
	}
	if err := m.issuer.IssueCommand(cmd); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "issued " + string(cmd)
}

func (m *tuiModel) refreshViewport() {
	lines := m.logs
	if m.wrap && m.vp.Width > 0 {
		lines = make([]string, len(m.logs))
		for i, l := range m.logs {
			lines[i] = wordwrap.String(l, m.vp.Width)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

// flaggedRows lists animals that need attention, escaped first.
func flaggedRows(cows []herd.Cow) []table.Row {
	var escaped, isolated []table.Row
	for _, c := range cows {
		row := table.Row{c.ID, string(c.Behavior), string(c.Status), fmt.Sprintf("%.0f", c.Position.X), fmt.Sprintf("%.0f", c.Position.Y)}
		switch c.Status {
		case herd.StatusEscaped:
			escaped = append(escaped, row)
		case herd.StatusIsolated:
			isolated = append(isolated, row)
		}
	}
	return append(escaped, isolated...)
}

func parseTargetInput(val string) (geom.Point, error) {
	parts := strings.Split(val, ",")
	if len(parts) != 2 {
		return geom.Point{}, fmt.Errorf("target must be x,y")
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid y: %w", err)
	}
	return geom.Point{X: x, Y: y}, nil
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	if !m.haveSnap {
		return "waiting for first tick..."
	}
	divider := styleGray.Render(strings.Repeat("─", max(m.width, 20)))
	sections := []string{m.renderHeader(), divider}
	if m.showMap {
		sections = append(sections, m.renderMap(), divider)
	}
	sections = append(sections,
		lipgloss.JoinHorizontal(lipgloss.Top, m.renderGraph(), "  ", m.table.View()),
		divider,
		m.renderReport(),
		divider,
		"Events:",
		m.vp.View(),
		divider,
		m.renderBottom(),
	)
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	s := m.snap
	band := colorStyle(s.BatteryBand)
	herdStyle := styleGreen
	switch s.HerdStatus {
	case herd.LabelEscaped:
		herdStyle = styleRed
	case herd.LabelIsolated:
		herdStyle = styleYellow
	}
	line := fmt.Sprintf("%s  tick %d  %s %s  battery %s  herd %s  %s %.0f°C",
		styleBold.Render(s.Drone.ID), s.Tick, s.Drone.Status,
		styleGray.Render(fmt.Sprintf("(%.0f,%.0f)", s.Drone.Position.X, s.Drone.Position.Y)),
		band.Render(fmt.Sprintf("%.1f%%", s.Drone.Battery)),
		herdStyle.Render(s.HerdStatus), s.Weather.Condition, s.Weather.Temperature)
	if s.Command != drone.CommandNone {
		line += "  " + styleCyan.Render(string(s.Command))
	}
	if s.Target != nil {
		line += styleCyan.Render(fmt.Sprintf(" → (%.0f,%.0f)", s.Target.X, s.Target.Y))
	}
	return line
}

func (m tuiModel) renderGraph() string {
	if len(m.snap.History) < 2 {
		return "Cohesion: collecting..."
	}
	return asciigraph.Plot(m.snap.History,
		asciigraph.Height(graphHeight),
		asciigraph.Width(min(len(m.snap.History)*2, 60)),
		asciigraph.Precision(0),
		asciigraph.Caption(fmt.Sprintf("avg spread %.0f (min %.0f max %.0f)", m.snap.Summary.Last, m.snap.Summary.Min, m.snap.Summary.Max)))
}

func (m tuiModel) renderReport() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return wordwrap.String("Report: "+m.snap.Report, width)
}

// renderMap draws the pasture scaled to the terminal, with the herd, the unit, its base and
// its target on top.
func (m tuiModel) renderMap() string {
	cols := max(m.width, 20)
	rows := max(m.height/3, 8)
	sx := m.cfg.Map.Width / float64(cols)
	sy := m.cfg.Map.Height / float64(rows)
	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
		for c := range grid[r] {
			p := geom.Point{X: (float64(c) + 0.5) * sx, Y: (float64(r) + 0.5) * sy}
			if geofence.Contains(p, m.fence) {
				grid[r][c] = styleGray.Render("·")
			} else {
				grid[r][c] = " "
			}
		}
	}
	put := func(p geom.Point, glyph string) {
		c := int(math.Floor(p.X / sx))
		r := int(math.Floor(p.Y / sy))
		if r >= 0 && r < rows && c >= 0 && c < cols {
			grid[r][c] = glyph
		}
	}
	put(geom.Point{X: m.cfg.Base.X, Y: m.cfg.Base.Y}, styleCyan.Render("B"))
	for _, c := range m.snap.Cows {
		put(c.Position, colorStyle(c.Status.Color()).Render("o"))
	}
	if m.snap.Target != nil {
		put(*m.snap.Target, styleCyan.Render("x"))
	}
	put(m.snap.Drone.Position, styleBold.Render("D"))
	lines := make([]string, rows)
	for r := range grid {
		lines[r] = strings.Join(grid[r], "")
	}
	return strings.Join(lines, "\n")
}

func (m tuiModel) renderBottom() string {
	if m.targetOpen {
		return "Target: " + m.targetInput.View()
	}
	help := styleGray.Render("r base · h isolated · s scan · t target · m map · w wrap · a autoscroll · ? help · q quit")
	if m.status != "" {
		return m.status + "  " + help
	}
	return help
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		styleBold.Render("Keys"),
		"  r  return to base",
		"  h  fly to the most isolated cow",
		"  s  start a full pasture scan",
		"  t  enter a manual target as x,y",
		"  m  toggle the map",
		"  w  toggle event wrapping",
		"  a  toggle autoscroll",
		"  q  quit",
		"",
		"Map: B base, D drone, x target, o cow (green grazing, yellow isolated, red escaped)",
		"",
		"press any key to return",
	}
	return strings.Join(lines, "\n")
}
