package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/records"
)

func init() {
	Register(&FileSource{})
}

// FileSource loads records from a local .json or .csv file.
type FileSource struct{}

// Spec implements Source.
func (s *FileSource) Spec() Spec {
	return Spec{Type: "file", Description: "local .json or .csv file"}
}

// Fetch reads cfg.File.Path. JSON files hold an array of objects; CSV files
// hold a header row followed by one row per record.
func (s *FileSource) Fetch(ctx context.Context, cfg *config.SourceConfig) (records.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return records.RecordSet{}, err
	}

	path := cfg.File.Path
	f, err := os.Open(path)
	if err != nil {
		return records.RecordSet{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var recs []records.Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := io.ReadAll(f)
		if err != nil {
			return records.RecordSet{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		recs, err = records.DecodeJSON(data)
		if err != nil {
			return records.RecordSet{}, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case ".csv":
		recs, err = readCSV(f)
		if err != nil {
			return records.RecordSet{}, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	default:
		return records.RecordSet{}, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}

	return records.RecordSet{Records: recs}, nil
}

// readCSV turns a header row plus data rows into records. Short rows get
// empty values for the missing trailing fields.
func readCSV(r io.Reader) ([]records.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var recs []records.Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		rec := records.Record{Fields: make([]records.Field, 0, len(header))}
		for i, name := range header {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			rec.Set(name, value)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
