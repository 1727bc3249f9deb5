package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cirozov-cmyk/device-logs-tile/internal/domain/devicelog"
)

// SQLSource runs a read-only query whose rows are treated as raw records.
// The query should return rows oldest first.
type SQLSource struct {
	db    *sqlx.DB
	query string
}

// NewSQLSource wires a query against an open connection.
func NewSQLSource(db *sqlx.DB, query string) *SQLSource {
	return &SQLSource{db: db, query: query}
}

// Name implements Source.
func (s *SQLSource) Name() string {
	return "sql"
}

// Fetch implements Source.
func (s *SQLSource) Fetch(ctx context.Context) ([]devicelog.Record, error) {
	rows, err := s.db.QueryxContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("query log source: %w", err)
	}
	defer rows.Close()

	var out []devicelog.Record
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan log row: %w", err)
		}
		out = append(out, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log rows: %w", err)
	}
	return out, nil
}

// normalizeRow turns driver-specific column values into JSON-friendly ones.
func normalizeRow(row map[string]any) devicelog.Record {
	rec := make(devicelog.Record, len(row))
	for k, v := range row {
		switch t := v.(type) {
		case []byte:
			rec[k] = string(t)
		case time.Time:
			rec[k] = t.Format(time.RFC3339)
		default:
			rec[k] = v
		}
	}
	return rec
}
