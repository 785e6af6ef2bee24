package source

import (
	"context"
	"database/sql"
	"fmt"

	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/records"

	// Database drivers selectable through source.sql.driver.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	Register(&SQLSource{})
}

// driverNames maps configured drivers to database/sql driver names.
var driverNames = map[string]string{
	"sqlite":   "sqlite",
	"postgres": "postgres",
	"mysql":    "mysql",
}

// SQLSource loads records with a database query. Column order becomes field
// order and NULL becomes the empty string.
type SQLSource struct{}

// Spec implements Source.
func (s *SQLSource) Spec() Spec {
	return Spec{Type: "sql", Description: "query against sqlite, postgres or mysql"}
}

// Fetch opens a connection, runs cfg.SQL.Query and closes the connection.
func (s *SQLSource) Fetch(ctx context.Context, cfg *config.SourceConfig) (records.RecordSet, error) {
	sc := cfg.SQL

	driver, ok := driverNames[sc.Driver]
	if !ok {
		return records.RecordSet{}, fmt.Errorf("unsupported sql driver %q", sc.Driver)
	}

	db, err := sql.Open(driver, sc.DSN)
	if err != nil {
		return records.RecordSet{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if sc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sc.Timeout)
		defer cancel()
	}

	recs, err := QueryRecords(ctx, db, sc.Query)
	if err != nil {
		return records.RecordSet{}, err
	}
	return records.RecordSet{Records: recs}, nil
}

// QueryRecords runs query on db and converts every row to a record.
func QueryRecords(ctx context.Context, db *sql.DB, query string) ([]records.Record, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	var recs []records.Record
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rec := records.Record{Fields: make([]records.Field, 0, len(columns))}
		for i, col := range columns {
			rec.Set(col, records.FormatValue(values[i]))
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return recs, nil
}
