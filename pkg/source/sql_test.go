package source

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"mercator-hq/converter/pkg/config"
)

func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE customers (msisdn TEXT, imei INTEGER, full_name TEXT, address TEXT)`,
		`INSERT INTO customers VALUES ('96899961669', 32023201072783, 'Maryam Ahmad', NULL)`,
		`INSERT INTO customers VALUES ('96899961670', 32023201072784, 'Salim Said', 'Muscat')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to seed database: %v", err)
		}
	}
	return path
}

func TestSQLSource_Fetch(t *testing.T) {
	path := seedDatabase(t)

	cfg := &config.SourceConfig{SQL: config.SQLSourceConfig{
		Driver: "sqlite",
		DSN:    path,
		Query:  "SELECT msisdn AS \"MSISDN\", imei AS \"IMEI\", full_name AS \"FULL NAME\", address AS \"ADDRESS\" FROM customers ORDER BY msisdn",
	}}

	set, err := (&SQLSource{}).Fetch(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", set.Len())
	}

	wantHeaders := []string{"MSISDN", "IMEI", "FULL NAME", "ADDRESS"}
	for i, h := range set.Headers() {
		if h != wantHeaders[i] {
			t.Errorf("header[%d] = %q, want %q", i, h, wantHeaders[i])
		}
	}

	first := set.Rows()[0]
	if first[1] != "32023201072783" {
		t.Errorf("integer column = %q", first[1])
	}
	if first[3] != "" {
		t.Errorf("NULL should become empty string, got %q", first[3])
	}
}

func TestSQLSource_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SQLSourceConfig
	}{
		{"unknown driver", config.SQLSourceConfig{Driver: "oracle", DSN: "x", Query: "SELECT 1"}},
		{"bad query", config.SQLSourceConfig{Driver: "sqlite", DSN: ":memory:", Query: "SELECT * FROM missing"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&SQLSource{}).Fetch(context.Background(), &config.SourceConfig{SQL: tt.cfg})
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
