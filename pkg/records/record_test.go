package records

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

// TestRecord_UnmarshalPreservesOrder tests that decoding keeps object key order.
func TestRecord_UnmarshalPreservesOrder(t *testing.T) {
	data := []byte(`{"MSISDN":"96899961669","IMEI":"32023201072783","FULL NAME":"Maryam Ahmad","CARRIER":"OmanTel"}`)

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}

	want := []string{"MSISDN", "IMEI", "FULL NAME", "CARRIER"}
	if got := rec.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

// TestRecord_UnmarshalScalars tests how non-string JSON values become text.
func TestRecord_UnmarshalScalars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"string", `{"v":"text"}`, "text"},
		{"empty string", `{"v":""}`, ""},
		{"null", `{"v":null}`, ""},
		{"integer", `{"v":96899961669}`, "96899961669"},
		{"float", `{"v":1.5}`, "1.5"},
		{"bool", `{"v":true}`, "true"},
		{"object", `{"v":{ "a": 1 }}`, `{"a":1}`},
		{"array", `{"v":[1, 2]}`, `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			if err := json.Unmarshal([]byte(tt.input), &rec); err != nil {
				t.Fatalf("Unmarshal() failed: %v", err)
			}
			got, ok := rec.Get("v")
			if !ok {
				t.Fatal("field v missing")
			}
			if got != tt.want {
				t.Errorf("Get(v) = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestRecord_UnmarshalRejectsNonObject tests that arrays and scalars are rejected.
func TestRecord_UnmarshalRejectsNonObject(t *testing.T) {
	for _, input := range []string{`[1,2]`, `"text"`, `42`} {
		var rec Record
		if err := json.Unmarshal([]byte(input), &rec); err == nil {
			t.Errorf("Unmarshal(%s) expected error", input)
		}
	}
}

// TestRecord_MarshalKeepsOrder tests that encoding emits fields in record order.
func TestRecord_MarshalKeepsOrder(t *testing.T) {
	rec := NewRecord("Z", "1", "A", "2", "M", "")

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	want := `{"Z":"1","A":"2","M":""}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

// TestRecord_Set tests replacing and appending fields.
func TestRecord_Set(t *testing.T) {
	rec := NewRecord("a", "1", "b", "2")
	rec.Set("a", "10")
	rec.Set("c", "3")

	if got := rec.Values(); !reflect.DeepEqual(got, []string{"10", "2", "3"}) {
		t.Errorf("Values() = %v", got)
	}
	if rec.Len() != 3 {
		t.Errorf("Len() = %d, want 3", rec.Len())
	}
}

// TestNewRecord_OddPairs tests a trailing name without a value.
func TestNewRecord_OddPairs(t *testing.T) {
	rec := NewRecord("a", "1", "b")
	v, ok := rec.Get("b")
	if !ok || v != "" {
		t.Errorf("Get(b) = %q, %v; want empty and present", v, ok)
	}
}

// TestRecordSet_HeadersAndRows tests header derivation and lookup by name.
func TestRecordSet_HeadersAndRows(t *testing.T) {
	set := RecordSet{Records: []Record{
		NewRecord("a", "1", "b", "2"),
		NewRecord("b", "4"),
	}}

	if got := set.Headers(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Headers() = %v", got)
	}

	want := [][]string{{"1", "2"}, {"", "4"}}
	if got := set.Rows(); !reflect.DeepEqual(got, want) {
		t.Errorf("Rows() = %v, want %v", got, want)
	}
}

// TestRecordSet_Empty tests the empty set helpers.
func TestRecordSet_Empty(t *testing.T) {
	var set RecordSet
	if !set.IsEmpty() {
		t.Error("zero RecordSet should be empty")
	}
	if set.Headers() != nil {
		t.Error("empty set should have no headers")
	}
}

// TestRecordSet_CloneIsDeep tests that clones do not share field storage.
func TestRecordSet_CloneIsDeep(t *testing.T) {
	set := RecordSet{Records: []Record{NewRecord("a", "1")}, FetchedAt: time.Now()}
	clone := set.Clone()
	clone.Records[0].Set("a", "changed")

	if v, _ := set.Records[0].Get("a"); v != "1" {
		t.Errorf("original mutated through clone: %q", v)
	}
}

// TestDecodeJSON tests decoding arrays and single objects.
func TestDecodeJSON(t *testing.T) {
	list, err := DecodeJSON([]byte(`[{"a":"1"},{"a":"2"}]`))
	if err != nil {
		t.Fatalf("DecodeJSON(array) failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 records, got %d", len(list))
	}

	single, err := DecodeJSON([]byte(`{"a":"1"}`))
	if err != nil {
		t.Fatalf("DecodeJSON(object) failed: %v", err)
	}
	if len(single) != 1 {
		t.Errorf("expected 1 record, got %d", len(single))
	}

	if _, err := DecodeJSON([]byte(`"nope"`)); err == nil {
		t.Error("DecodeJSON(string) expected error")
	}
}

// TestFormatValue tests rendering of scanned values.
func TestFormatValue(t *testing.T) {
	ts := time.Date(2014, 1, 23, 13, 16, 0, 0, time.UTC)
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{[]byte("raw"), "raw"},
		{int64(42), "42"},
		{float64(2.5), "2.5"},
		{true, "true"},
		{ts, "2014-01-23 13:16:00"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestErrors_Kinds tests that typed errors match their sentinels.
func TestErrors_Kinds(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	srcErr := NewSourceError("http", cause)
	if !errors.Is(srcErr, ErrSourceUnavailable) {
		t.Error("SourceError should match ErrSourceUnavailable")
	}
	if !errors.Is(srcErr, cause) {
		t.Error("SourceError should unwrap to its cause")
	}

	empty := NewEmptyInputError("xlsx")
	if !errors.Is(empty, ErrEmptyInput) {
		t.Error("empty input error should match ErrEmptyInput")
	}
	if errors.Is(empty, ErrRenderFailure) {
		t.Error("empty input error should not match ErrRenderFailure")
	}

	render := NewRenderError("pdf", 3, cause)
	if !errors.Is(render, ErrRenderFailure) || !errors.Is(render, cause) {
		t.Error("render error should match ErrRenderFailure and its cause")
	}

	var exportErr *ExportError
	if !errors.As(render, &exportErr) || exportErr.RecordCount != 3 {
		t.Error("errors.As should recover *ExportError")
	}

	want := "export error [format=pdf, record_count=3]: render failure: dial tcp: refused"
	if render.Error() != want {
		t.Errorf("Error() = %q, want %q", render.Error(), want)
	}
}
