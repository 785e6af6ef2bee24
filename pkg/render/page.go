package render

import (
	"html/template"
	"io"
	"time"
)

// PageData is the state rendered by the preview page.
type PageData struct {
	Title     string
	Table     Table
	Source    string
	FetchedAt time.Time

	// Fetching and Exporting disable the corresponding controls.
	Fetching  bool
	Exporting bool

	// Formats lists the export formats offered as download links.
	Formats []string

	// Notice is an optional message shown above the table, such as the
	// result of the last action.
	Notice string
}

// FirstRowKeys returns the header names shown in the debug panel.
func (d PageData) FirstRowKeys() []string {
	return d.Table.Headers
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #000; padding: 8px; text-align: left; }
th { background-color: #2980b9; color: #fff; padding: 10px; }
.debug { color: #555; font-size: 0.9em; margin-bottom: 1rem; }
.notice { background: #fdf2e9; padding: 0.5rem; margin-bottom: 1rem; }
.controls { margin-bottom: 1rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="controls">
<form method="post" action="/api/fetch" style="display:inline">
<button type="submit"{{if .Fetching}} disabled{{end}}>{{if .Fetching}}Loading...{{else}}Fetch Data{{end}}</button>
</form>
{{range .Formats}}<a class="export" href="/api/export/{{.}}"{{if $.Exporting}} aria-disabled="true" style="pointer-events:none;opacity:0.5"{{end}}>Export {{.}}</a>
{{end}}</div>
{{with .Notice}}<div class="notice">{{.}}</div>{{end}}
<div class="debug">
<p>Records: {{len .Table.Rows}}</p>
{{if .FirstRowKeys}}<p>First row keys: {{range $i, $k := .FirstRowKeys}}{{if $i}}, {{end}}{{$k}}{{end}}</p>{{end}}
{{if .Source}}<p>Source: {{.Source}}{{if not .FetchedAt.IsZero}} at {{.FetchedAt.Format "2006-01-02 15:04:05"}}{{end}}</p>{{end}}
</div>
{{if .Table.Empty}}<p>No data loaded.</p>{{else}}<table>
<thead><tr>{{range .Table.Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Table.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>{{end}}
</body>
</html>
`))

// Page writes the HTML preview for data.
func Page(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = "Customer Data"
	}
	return pageTemplate.Execute(w, data)
}
