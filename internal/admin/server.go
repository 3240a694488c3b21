package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"moove-sim/internal/drone"
	"moove-sim/internal/geom"
	"moove-sim/internal/herd"
	"moove-sim/internal/logging"
	"moove-sim/internal/sim"
	"moove-sim/internal/telemetry"
)

// Farm is the part of the simulator the admin surface needs.
type Farm interface {
	sim.Commander
	Snapshot() sim.Snapshot
	Subscribe() (<-chan sim.Snapshot, func())
	Events() []telemetry.DroneEventRow
	Layout() sim.Layout
}

type Server struct {
	Sim      Farm
	tpl      *template.Template
	mux      *http.ServeMux
	upgrader websocket.Upgrader
}

//go:embed templates/index.html
var content embed.FS

func NewServer(farm Farm) *Server {
	tpl := template.Must(template.New("index.html").Funcs(template.FuncMap{
		"points": svgPoints,
	}).ParseFS(content, "templates/index.html"))
	s := &Server{
		Sim:      farm,
		tpl:      tpl,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("/history", s.handleHistory)
	s.mux.HandleFunc("/events", s.handleEvents)
	s.mux.HandleFunc("/pasture.geojson", s.handleGeoJSON)
	s.mux.HandleFunc("/target", s.handleTarget)
	s.mux.HandleFunc("/command", s.handleCommand)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start serves on addr until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	log := logging.FromContext(ctx)
	srv := &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("admin server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := struct {
		Layout   sim.Layout
		Snapshot sim.Snapshot
	}{
		Layout:   s.Sim.Layout(),
		Snapshot: s.Sim.Snapshot(),
	}
	if err := s.tpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render index", "err", err)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()
	writeJSON(w, struct {
		Values  []float64    `json:"values"`
		Summary herd.Summary `json:"summary"`
		Status  string       `json:"status"`
	}{snap.History, snap.Summary, snap.HerdStatus})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Events())
}

// handleGeoJSON exports the pasture and barn outlines plus the base and scan route.
func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	l := s.Sim.Layout()
	fc := geojson.NewFeatureCollection()
	fc.Append(l.Pasture.Feature(l.PastureID, l.PastureName))
	if len(l.Barn) > 0 {
		barn := l.Barn.Feature("barn", "Barn")
		barn.Properties["kind"] = "barn"
		fc.Append(barn)
	}
	base := geojson.NewFeature(l.Base.Orb())
	base.Properties["kind"] = "base"
	base.Properties["radius"] = l.BaseRadius
	fc.Append(base)
	route := make(orb.LineString, 0, len(l.Waypoints))
	for _, wp := range l.Waypoints {
		route = append(route, wp.Orb())
	}
	scan := geojson.NewFeature(route)
	scan.Properties["kind"] = "scan_route"
	fc.Append(scan)

	data, err := fc.MarshalJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	x, errX := strconv.ParseFloat(r.FormValue("x"), 64)
	y, errY := strconv.ParseFloat(r.FormValue("y"), 64)
	if err := errors.Join(errX, errY); err != nil {
		http.Error(w, fmt.Sprintf("invalid target: %v", err), http.StatusBadRequest)
		return
	}
	s.Sim.SetTarget(geom.Point{X: x, Y: y})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cmd, err := drone.ParseCommand(r.FormValue("name"))
	if err == nil {
		err = s.Sim.IssueCommand(cmd)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWebSocket streams every published snapshot, starting with the current one.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ch, unsubscribe := s.Sim.Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(s.Sim.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				log.Debug("websocket client gone", "err", err)
				return
			}
		case <-closed:
			return
		}
	}
}

func svgPoints(poly []geom.Point) string {
	out := make([]byte, 0, len(poly)*12)
	for i, p := range poly {
		if i > 0 {
			out = append(out, ' ')
		}
		out = strconv.AppendFloat(out, p.X, 'f', 1, 64)
		out = append(out, ',')
		out = strconv.AppendFloat(out, p.Y, 'f', 1, 64)
	}
	return string(out)
}
