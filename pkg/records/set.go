package records

import (
	"encoding/json"
	"time"
)

// RecordSet is the result of one fetch. It is replaced wholesale on every
// fetch and treated as read-only by renderers and exporters.
type RecordSet struct {
	// Records holds the fetched rows in source order.
	Records []Record

	// FetchedAt is when the set was produced.
	FetchedAt time.Time

	// Source is the type of the source that produced the set.
	Source string
}

// Len returns the number of records.
func (s RecordSet) Len() int {
	return len(s.Records)
}

// IsEmpty reports whether the set holds no records.
func (s RecordSet) IsEmpty() bool {
	return len(s.Records) == 0
}

// Headers returns the field names of the first record, which define the
// column order for every projection of the set.
func (s RecordSet) Headers() []string {
	if len(s.Records) == 0 {
		return nil
	}
	return s.Records[0].Names()
}

// Rows returns the values of every record looked up by header, so a record
// missing a field still yields a cell in the right column.
func (s RecordSet) Rows() [][]string {
	headers := s.Headers()
	rows := make([][]string, len(s.Records))
	for i, rec := range s.Records {
		row := make([]string, len(headers))
		for j, h := range headers {
			row[j], _ = rec.Get(h)
		}
		rows[i] = row
	}
	return rows
}

// Clone returns a deep copy of the set.
func (s RecordSet) Clone() RecordSet {
	out := RecordSet{FetchedAt: s.FetchedAt, Source: s.Source}
	if s.Records != nil {
		out.Records = make([]Record, len(s.Records))
		for i, rec := range s.Records {
			out.Records[i] = rec.Clone()
		}
	}
	return out
}

// DecodeJSON decodes a JSON array of objects, or a single object, into records.
func DecodeJSON(data []byte) ([]Record, error) {
	var list []Record
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var single Record
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, err
	}
	return []Record{single}, nil
}
