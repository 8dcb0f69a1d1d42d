package main

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArchive(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

const batchTestDoc = `{
	"main-text": [
		{"type": "paragraph", "prov": [{"page": 1, "bbox": [10, 10, 50, 50]}]}
	],
	"page-dimensions": [{"page": 1, "width": 100, "height": 100}]
}`

func TestProcessResultsBestEffort(t *testing.T) {
	resultsDir := t.TempDir()
	writeArchive(t, filepath.Join(resultsDir, "json_good.zip"), map[string]string{
		"good.json":   batchTestDoc,
		"broken.json": "this is not json",
		"readme.txt":  "ignored, not a document entry",
	})

	app := newTestApp(t)
	app.Database = newTestDB(t)

	summary, err := app.ProcessResults(context.Background(), resultsDir)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Visualized)
	assert.Equal(t, 1, summary.Failed, "the unparsable entry is counted, not fatal")
	assert.Equal(t, 0, summary.Skipped)

	_, err = os.Stat(filepath.Join(app.OutputDir, "good.html"))
	assert.NoError(t, err)
}

func TestProcessResultsSkipsCompletedEntries(t *testing.T) {
	resultsDir := t.TempDir()
	writeArchive(t, filepath.Join(resultsDir, "json_good.zip"), map[string]string{
		"good.json": batchTestDoc,
	})

	app := newTestApp(t)
	app.Database = newTestDB(t)

	first, err := app.ProcessResults(context.Background(), resultsDir)
	require.NoError(t, err)
	require.Equal(t, 1, first.Visualized)

	second, err := app.ProcessResults(context.Background(), resultsDir)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Visualized)
	assert.Equal(t, 1, second.Skipped)

	// FORCE_REVISUALIZE bypasses the history check.
	forceRevisualize = true
	defer func() { forceRevisualize = false }()

	third, err := app.ProcessResults(context.Background(), resultsDir)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Visualized)
}

func TestProcessResultsUnreadableArchive(t *testing.T) {
	resultsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(resultsDir, "json_bad.zip"), []byte("not a zip"), 0o644))
	writeArchive(t, filepath.Join(resultsDir, "json_good.zip"), map[string]string{
		"good.json": batchTestDoc,
	})

	app := newTestApp(t)
	app.Database = newTestDB(t)

	summary, err := app.ProcessResults(context.Background(), resultsDir)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Visualized, "the readable archive is still processed")
	assert.Equal(t, 1, summary.Failed)
}

func TestProcessResultsNoArchives(t *testing.T) {
	app := newTestApp(t)
	app.Database = newTestDB(t)

	summary, err := app.ProcessResults(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{}, summary)
}

func TestProcessResultsWithCellsEntry(t *testing.T) {
	resultsDir := t.TempDir()
	writeArchive(t, filepath.Join(resultsDir, "json_cells.zip"), map[string]string{
		"doc.json":  batchTestDoc,
		"doc.cells": `{"cells": {"data": [[0, 15, 15, 40, 40, "paragraph"]]}}`,
	})

	app := newTestApp(t)
	app.Database = newTestDB(t)
	app.Options.ShowTextCellBoxes = true

	summary, err := app.ProcessResults(context.Background(), resultsDir)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Visualized)
}
