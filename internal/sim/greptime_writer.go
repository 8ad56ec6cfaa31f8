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

	"droneops-telemetry/internal/telemetry"
)

const (
	defaultGreptimePort  = 4001
	greptimeWriteTimeout = 5 * time.Second
)

// greptimeClient is the subset of the ingester client used by the writer.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes each tick's reading to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client greptimeClient
	table  string
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port") and database.
// An empty tableName defers to Reading.TableName on every write.
func NewGreptimeDBWriter(endpoint, database, tableName string) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{client: client, table: tableName}, nil
}

func splitEndpoint(endpoint string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		// no port given
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid GreptimeDB port %q: %w", portStr, err)
	}
	return host, port, nil
}

// newReadingTable declares the drone_telemetry schema.
func newReadingTable(name string) (*table.Table, error) {
	tbl, err := table.New(name)
	if err != nil {
		return nil, err
	}
	cols := []struct {
		name string
		tag  bool
		typ  types.ColumnType
	}{
		{"session_id", true, types.STRING},
		{"battery", false, types.FLOAT64},
		{"roll", false, types.FLOAT64},
		{"pitch", false, types.FLOAT64},
		{"yaw", false, types.FLOAT64},
		{"temperature", false, types.FLOAT64},
		{"altitude", false, types.FLOAT64},
		{"lat", false, types.FLOAT64},
		{"lon", false, types.FLOAT64},
		{"connection", false, types.STRING},
		{"alert_count", false, types.INT64},
	}
	for _, c := range cols {
		if c.tag {
			err = tbl.AddTagColumn(c.name, c.typ)
		} else {
			err = tbl.AddFieldColumn(c.name, c.typ)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}
	return tbl, nil
}

// readingRow lists column values in newReadingTable order.
func readingRow(frame telemetry.Frame) []any {
	r := frame.Latest
	return []any{
		frame.SessionID,
		r.Battery,
		r.Roll,
		r.Pitch,
		r.Yaw,
		r.Temperature,
		r.Altitude,
		r.Latitude,
		r.Longitude,
		string(r.Connection),
		int64(len(frame.Alerts)),
		r.Timestamp,
	}
}

// Write inserts the frame's latest reading.
func (w *GreptimeDBWriter) Write(frame telemetry.Frame) error {
	name := w.table
	if name == "" {
		name = frame.Latest.TableName()
	}
	tbl, err := newReadingTable(name)
	if err != nil {
		return err
	}
	if err := tbl.AddRow(readingRow(frame)...); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), greptimeWriteTimeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		return fmt.Errorf("greptimedb write: %w", err)
	}
	return nil
}
