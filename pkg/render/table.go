package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"mercator-hq/converter/pkg/records"
)

// Table is a projected record set ready for display.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Project builds a display table from set. Empty values are replaced by
// placeholder.
func Project(set records.RecordSet, placeholder string) Table {
	rows := set.Rows()
	for _, row := range rows {
		for i, cell := range row {
			if cell == "" {
				row[i] = placeholder
			}
		}
	}
	return Table{Headers: set.Headers(), Rows: rows}
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// WriteText writes t as an aligned grid. An empty table prints a notice
// instead.
func WriteText(w io.Writer, t Table) error {
	if t.Empty() {
		_, err := fmt.Fprintln(w, "No data loaded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))

	rule := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		rule[i] = strings.Repeat("-", len([]rune(h)))
	}
	fmt.Fprintln(tw, strings.Join(rule, "\t"))

	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
