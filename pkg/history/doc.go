// Package history records completed and failed exports.
//
// Every export attempt that reaches an exporter produces one Entry, so
// operators can see what was exported, when, and how large the output was.
// Two backends are provided:
//
//	memory  bounded ring of the most recent entries (default)
//	sqlite  durable table in a SQLite database (modernc.org/sqlite, no cgo)
//
// Configuration:
//
//	history:
//	  enabled: true
//	  backend: "sqlite"
//	  limit: 100
//	  sqlite:
//	    path: "data/history.db"
//	    busy_timeout: "5s"
//	    wal_mode: true
//
// When history is disabled, New returns a store that discards entries.
package history
