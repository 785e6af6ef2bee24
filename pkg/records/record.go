package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Field is a single named value of a record.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is an ordered mapping from field name to field value.
// The zero value is an empty record ready to use.
type Record struct {
	Fields []Field
}

// NewRecord builds a record from alternating name/value pairs.
// A trailing name without a value gets the empty string.
func NewRecord(pairs ...string) Record {
	rec := Record{Fields: make([]Field, 0, (len(pairs)+1)/2)}
	for i := 0; i < len(pairs); i += 2 {
		value := ""
		if i+1 < len(pairs) {
			value = pairs[i+1]
		}
		rec.Set(pairs[i], value)
	}
	return rec
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.Fields)
}

// Names returns the field names in record order.
func (r Record) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// Values returns the field values in record order.
func (r Record) Values() []string {
	values := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		values[i] = f.Value
	}
	return values
}

// Get returns the value for name and whether the field is present.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing field or appends a new one.
func (r *Record) Set(name, value string) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, Field{Name: name, Value: value})
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	fields := make([]Field, len(r.Fields))
	copy(fields, r.Fields)
	return Record{Fields: fields}
}

// MarshalJSON encodes the record as a JSON object, keeping field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the record, keeping key order.
// Strings are taken as-is, null becomes "", numbers and booleans keep their
// literal text, and nested objects or arrays are stored as compact JSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object, got %v", tok)
	}

	r.Fields = r.Fields[:0]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		value, err := scalarText(raw)
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		r.Set(name, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// scalarText converts a raw JSON value into its display text.
func scalarText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case 'n':
		return "", nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return string(trimmed), nil
	}
}

// LogValue implements slog.LogValuer. Each field becomes an attribute so log
// handlers can redact values by field name.
func (r Record) LogValue() slog.Value {
	attrs := make([]slog.Attr, len(r.Fields))
	for i, f := range r.Fields {
		attrs[i] = slog.String(f.Name, f.Value)
	}
	return slog.GroupValue(attrs...)
}

// FormatValue renders a scanned or decoded Go value as record text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
