package render

import (
	"bytes"
	"strings"
	"testing"

	"mercator-hq/converter/pkg/records"
)

func sampleSet() records.RecordSet {
	return records.RecordSet{Records: []records.Record{
		records.NewRecord("MSISDN", "96899961669", "GENDER", "Female", "ADDRESS", ""),
		records.NewRecord("GENDER", "Male", "MSISDN", "96899961670"),
	}}
}

func TestProject(t *testing.T) {
	set := sampleSet()
	table := Project(set, "EMPTY")

	wantHeaders := []string{"MSISDN", "GENDER", "ADDRESS"}
	if strings.Join(table.Headers, ",") != strings.Join(wantHeaders, ",") {
		t.Errorf("headers = %v, want %v", table.Headers, wantHeaders)
	}

	tests := []struct {
		row  int
		want []string
	}{
		{0, []string{"96899961669", "Female", "EMPTY"}},
		{1, []string{"96899961670", "Male", "EMPTY"}},
	}
	for _, tt := range tests {
		got := table.Rows[tt.row]
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("row %d cell %d = %q, want %q", tt.row, i, got[i], tt.want[i])
			}
		}
	}

	if v, _ := set.Records[0].Get("ADDRESS"); v != "" {
		t.Error("Project must not modify the record set")
	}
}

func TestProject_Empty(t *testing.T) {
	table := Project(records.RecordSet{}, "EMPTY")
	if !table.Empty() || len(table.Headers) != 0 {
		t.Errorf("expected empty table, got %+v", table)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, Project(sampleSet(), "EMPTY")); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "MSISDN") || !strings.Contains(lines[1], "------") {
		t.Errorf("unexpected header block:\n%s", buf.String())
	}
	if !strings.Contains(lines[2], "EMPTY") {
		t.Errorf("expected placeholder in first row: %q", lines[2])
	}

	buf.Reset()
	if err := WriteText(&buf, Table{}); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if buf.String() != "No data loaded.\n" {
		t.Errorf("unexpected empty output %q", buf.String())
	}
}

func TestPage(t *testing.T) {
	tests := []struct {
		name     string
		data     PageData
		contains []string
		excludes []string
	}{
		{
			name: "loaded",
			data: PageData{
				Table:   Project(sampleSet(), "EMPTY"),
				Source:  "sample",
				Formats: []string{"xlsx", "pdf"},
			},
			contains: []string{
				"<th>MSISDN</th>",
				"<td>EMPTY</td>",
				"Records: 2",
				"First row keys: MSISDN, GENDER, ADDRESS",
				`href="/api/export/pdf"`,
				"Fetch Data",
			},
			excludes: []string{"disabled", "No data loaded."},
		},
		{
			name:     "fetching",
			data:     PageData{Fetching: true, Exporting: true, Formats: []string{"xlsx"}},
			contains: []string{"disabled", "Loading...", `aria-disabled="true"`, "No data loaded."},
		},
		{
			name: "escapes values",
			data: PageData{
				Table: Table{Headers: []string{"NAME"}, Rows: [][]string{{"<script>x</script>"}}},
			},
			contains: []string{"&lt;script&gt;"},
			excludes: []string{"<script>x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Page(&buf, tt.data); err != nil {
				t.Fatalf("Page failed: %v", err)
			}
			out := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("expected %q in page", s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("unexpected %q in page", s)
				}
			}
		})
	}
}
