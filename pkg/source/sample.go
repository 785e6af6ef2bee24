package source

import (
	"context"
	"time"

	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/records"
)

func init() {
	Register(&SampleSource{})
}

// SampleSource returns one fixed customer record after the configured
// fetch delay. ADDRESS is deliberately empty so previews show the
// placeholder.
type SampleSource struct{}

// Spec implements Source.
func (s *SampleSource) Spec() Spec {
	return Spec{Type: "sample", Description: "fixed sample customer record"}
}

// Fetch waits for cfg.FetchDelay, or until ctx is done, then returns the
// sample record.
func (s *SampleSource) Fetch(ctx context.Context, cfg *config.SourceConfig) (records.RecordSet, error) {
	if cfg.FetchDelay > 0 {
		timer := time.NewTimer(cfg.FetchDelay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return records.RecordSet{}, ctx.Err()
		case <-timer.C:
		}
	}

	return records.RecordSet{Records: []records.Record{SampleRecord()}}, nil
}

// SampleRecord returns the sample customer record.
func SampleRecord() records.Record {
	return records.NewRecord(
		"MSISDN", "96899961669",
		"IMEI", "32023201072783",
		"IMSI", "422023201072783",
		"FULL NAME", "Maryam ﻣﺮﻳﻡ Ahmad",
		"CARRIER", "OmanTel",
		"SUBSCRIPTION START", "2014-01-23 13:16:00",
		"SUBSCRIPTION END", "2024-01-23 13:16:00",
		"CUSTOMER ID", "ID_5783630556",
		"NATIONALITY", "Arabic",
		"DATE OF BIRTH", "1990-01-23 00:00:00",
		"GENDER", "Female",
		"ADDRESS", "",
	)
}
