package sim

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"moove-sim/internal/telemetry"
)

const (
	defaultGreptimePort = 4001
	greptimeTimeout     = 5 * time.Second
)

// greptimeClient is the part of the ingester client the writer needs.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes drone, cow, herd state and event rows to GreptimeDB via the
// ingester client. Tables are created on first write.
type GreptimeDBWriter struct {
	client     greptimeClient
	droneTable string
	cowTable   string
	stateTable string
	eventTable string
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port").
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptimedb client: %w", err)
	}
	return &GreptimeDBWriter{
		client:     client,
		droneTable: telemetry.DroneTableName,
		cowTable:   telemetry.CowTableName,
		stateTable: telemetry.HerdStateTableName,
		eventTable: telemetry.DroneEventTableName,
	}, nil
}

func splitEndpoint(endpoint string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		// No port given.
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("greptimedb endpoint %q: invalid port: %w", endpoint, err)
	}
	return host, port, nil
}

func (w *GreptimeDBWriter) write(tbl *table.Table) error {
	ctx, cancel := context.WithTimeout(context.Background(), greptimeTimeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		return fmt.Errorf("greptimedb write: %w", err)
	}
	return nil
}

// Write inserts a single drone row.
func (w *GreptimeDBWriter) Write(row telemetry.DroneRow) error {
	return w.WriteBatch([]telemetry.DroneRow{row})
}

// WriteBatch inserts multiple drone rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.DroneRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.droneTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("session_id", types.STRING)
	tbl.AddTagColumn("drone_id", types.STRING)
	tbl.AddFieldColumn("x", types.FLOAT64)
	tbl.AddFieldColumn("y", types.FLOAT64)
	tbl.AddFieldColumn("vx", types.FLOAT64)
	tbl.AddFieldColumn("vy", types.FLOAT64)
	tbl.AddFieldColumn("battery", types.FLOAT64)
	tbl.AddFieldColumn("status", types.STRING)
	tbl.AddFieldColumn("command", types.STRING)
	tbl.AddFieldColumn("has_target", types.BOOLEAN)
	tbl.AddFieldColumn("target_x", types.FLOAT64)
	tbl.AddFieldColumn("target_y", types.FLOAT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)
	for _, r := range rows {
		if err := tbl.AddRow(r.SessionID, r.DroneID, r.X, r.Y, r.VX, r.VY, r.Battery, r.Status,
			r.Command, r.HasTarget, r.TargetX, r.TargetY, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(tbl)
}

// WriteCows inserts one row per animal.
func (w *GreptimeDBWriter) WriteCows(rows []telemetry.CowRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.cowTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("session_id", types.STRING)
	tbl.AddTagColumn("cow_id", types.STRING)
	tbl.AddTagColumn("behavior", types.STRING)
	tbl.AddFieldColumn("x", types.FLOAT64)
	tbl.AddFieldColumn("y", types.FLOAT64)
	tbl.AddFieldColumn("status", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)
	for _, r := range rows {
		if err := tbl.AddRow(r.SessionID, r.CowID, r.Behavior, r.X, r.Y, r.Status, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(tbl)
}

// WriteState inserts the herd metrics of one tick.
func (w *GreptimeDBWriter) WriteState(r telemetry.HerdStateRow) error {
	tbl, err := table.New(w.stateTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("session_id", types.STRING)
	tbl.AddFieldColumn("tick", types.INT64)
	tbl.AddFieldColumn("centroid_x", types.FLOAT64)
	tbl.AddFieldColumn("centroid_y", types.FLOAT64)
	tbl.AddFieldColumn("average_distance", types.FLOAT64)
	tbl.AddFieldColumn("grazing", types.INT64)
	tbl.AddFieldColumn("isolated", types.INT64)
	tbl.AddFieldColumn("escaped", types.INT64)
	tbl.AddFieldColumn("label", types.STRING)
	tbl.AddFieldColumn("target_x", types.FLOAT64)
	tbl.AddFieldColumn("target_y", types.FLOAT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)
	if err := tbl.AddRow(r.SessionID, r.Tick, r.CentroidX, r.CentroidY, r.AverageDistance,
		int64(r.Grazing), int64(r.Isolated), int64(r.Escaped), r.Label, r.TargetX, r.TargetY, r.Timestamp); err != nil {
		return err
	}
	return w.write(tbl)
}

// WriteEvent inserts a single drone event.
func (w *GreptimeDBWriter) WriteEvent(row telemetry.DroneEventRow) error {
	return w.WriteEvents([]telemetry.DroneEventRow{row})
}

// WriteEvents inserts multiple drone events.
func (w *GreptimeDBWriter) WriteEvents(rows []telemetry.DroneEventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("session_id", types.STRING)
	tbl.AddTagColumn("drone_id", types.STRING)
	tbl.AddFieldColumn("event_type", types.STRING)
	tbl.AddFieldColumn("from_status", types.STRING)
	tbl.AddFieldColumn("to_status", types.STRING)
	tbl.AddFieldColumn("command", types.STRING)
	tbl.AddFieldColumn("waypoint", types.INT64)
	tbl.AddFieldColumn("x", types.FLOAT64)
	tbl.AddFieldColumn("y", types.FLOAT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)
	for _, r := range rows {
		if err := tbl.AddRow(r.SessionID, r.DroneID, r.EventType, r.FromStatus, r.ToStatus,
			r.Command, int64(r.Waypoint), r.X, r.Y, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(tbl)
}
