// Package source fetches customer records from a configured backend.
//
// A Source produces one records.RecordSet per call. Sources register
// themselves by type at init time:
//
//	sample  fixed twelve-field sample record after a configurable delay
//	http    JSON array of objects from a backend URL
//	file    local .json or .csv file
//	sql     query against sqlite, postgres or mysql
//
// The Adapter binds a Source to a records.Holder. It owns the fetch busy
// flag, wraps every failure as records.ErrSourceUnavailable, and replaces the
// held set only on success:
//
//	adapter, err := source.NewAdapter(&cfg.Source, holder, source.WithMetrics(collector))
//	if err != nil {
//	    return err
//	}
//	set, err := adapter.Fetch(ctx)
package source
