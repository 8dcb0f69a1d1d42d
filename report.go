package main

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/Masterminds/sprig/v3"
)

// reportTemplate lays out one table cell per page, Columns cells to a row.
const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8" />
<title>{{ .Title | default "Layout visualization" }}</title>
</head>
<body>
<h1>{{ .Title | default "Layout visualization" }}</h1>
<p>Generated {{ .GeneratedAt | date "2006-01-02 15:04:05" }}</p>
<table>
{{- range .Rows }}
<tr>
{{- range . }}
<td><strong>Page {{ .Page }}</strong><br /><img src="{{ .ImgSrc }}" /></td>
{{- end }}
</tr>
{{- end }}
</table>
</body>
</html>
`

var reportTmpl = template.Must(
	template.New("report").Funcs(sprig.HtmlFuncMap()).Parse(reportTemplate),
)

// writeReport renders the report and publishes it at path. The file is
// written to a temporary sibling first and renamed into place, so a crash
// mid-write never leaves a partial report behind as if it were complete.
func writeReport(path string, data ReportData) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("error creating report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := reportTmpl.Execute(tmp, data); err != nil {
		tmp.Close()
		return fmt.Errorf("error rendering report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing report file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("error publishing report: %w", err)
	}
	return nil
}

// chunkRows splits the ordered page cells into report rows of ncols cells.
func chunkRows(cells []PageCell, ncols int) [][]PageCell {
	if ncols < 1 {
		ncols = 1
	}
	var rows [][]PageCell
	for start := 0; start < len(cells); start += ncols {
		end := start + ncols
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, cells[start:end])
	}
	return rows
}
