// Package records defines the tabular data model shared by every converter
// component: ordered records, record sets and the in-memory holder that keeps
// the current record set between a fetch and the exports that read it.
//
// # Records
//
// A Record is an ordered list of field name/value pairs. Field order is
// significant: the first record of a set defines the table headers, and all
// exporters emit columns in that order. JSON decoding preserves object key
// order, which a plain map[string]any would lose.
//
//	var rec records.Record
//	_ = json.Unmarshal([]byte(`{"MSISDN":"968","IMEI":"320"}`), &rec)
//	rec.Names() // ["MSISDN", "IMEI"]
//
// # Holder
//
// The Holder keeps the current RecordSet and two busy flags, one for fetches
// and one for exports. The flags exist to reject re-entrant triggers from the
// UI or API; a second fetch while one is in flight fails with ErrBusy.
//
//	release, err := holder.BeginExport()
//	if err != nil {
//	    return err // records.ErrBusy
//	}
//	defer release()
//
// # Errors
//
// All converter failures fall into three kinds, matched with errors.Is:
//
//   - ErrSourceUnavailable: the fetch failed; the holder is unchanged
//   - ErrEmptyInput: an export was attempted with no loaded data
//   - ErrRenderFailure: an encoder failed while producing the output
package records
