package main

import (
	"html/template"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.html")

	data := ReportData{
		Title:       "sample-document",
		GeneratedAt: time.Date(2024, 3, 23, 8, 37, 39, 0, time.UTC),
		Rows: [][]PageCell{
			{
				{Page: 1, ImgSrc: template.URL("data:image/png;base64,aW1hZ2Ux")},
				{Page: 2, ImgSrc: template.URL("data:image/png;base64,aW1hZ2Uy")},
			},
			{
				{Page: 3, ImgSrc: template.URL("data:image/png;base64,aW1hZ2Uz")},
			},
		},
	}
	require.NoError(t, writeReport(path, data))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(content)

	assert.Contains(t, html, "<title>sample-document</title>")
	assert.Contains(t, html, "<strong>Page 1</strong>")
	assert.Contains(t, html, "<strong>Page 3</strong>")
	assert.Contains(t, html, `src="data:image/png;base64,aW1hZ2Ux"`)
	assert.NotContains(t, html, "ZgotmplZ", "data URIs must survive HTML escaping")
	assert.Contains(t, html, "Generated 2024-03-23")

	// No temp file left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteReportDefaultTitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, writeReport(path, ReportData{GeneratedAt: time.Now()}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<title>Layout visualization</title>")
}

func TestChunkRows(t *testing.T) {
	cells := []PageCell{{Page: 1}, {Page: 2}, {Page: 3}, {Page: 4}, {Page: 5}}

	tests := []struct {
		name     string
		ncols    int
		wantRows []int // cells per row
	}{
		{name: "three columns", ncols: 3, wantRows: []int{3, 2}},
		{name: "single column", ncols: 1, wantRows: []int{1, 1, 1, 1, 1}},
		{name: "wider than input", ncols: 10, wantRows: []int{5}},
		{name: "zero columns treated as one", ncols: 0, wantRows: []int{1, 1, 1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := chunkRows(cells, tt.ncols)
			require.Len(t, rows, len(tt.wantRows))
			for i, want := range tt.wantRows {
				assert.Len(t, rows[i], want)
			}
			assert.Equal(t, 1, rows[0][0].Page, "encounter order is preserved")
		})
	}

	assert.Empty(t, chunkRows(nil, 3))
}
