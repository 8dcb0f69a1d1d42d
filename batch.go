package main

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/likelyzhao/ibmds-mmbvc/docmodel"
)

// ProcessResults walks every result archive (json*.zip) under resultsDir and
// visualizes the documents inside, best-effort: an unreadable archive or
// entry is logged and skipped, a failed rasterization aborts only that
// document. Entries already recorded as completed are skipped unless
// FORCE_REVISUALIZE is set.
func (app *App) ProcessResults(ctx context.Context, resultsDir string) (BatchSummary, error) {
	runID := uuid.New().String()
	runLogger := log.WithField("run_id", runID)

	var summary BatchSummary
	var archives []string
	err := filepath.WalkDir(resultsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasPrefix(d.Name(), "json") && strings.HasSuffix(d.Name(), ".zip") {
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("error scanning results directory %s: %w", resultsDir, err)
	}
	sort.Strings(archives)

	if len(archives) == 0 {
		runLogger.WithField("dir", resultsDir).Warn("No result archives found")
		return summary, nil
	}

	for _, archivePath := range archives {
		if err := app.processArchive(ctx, runID, archivePath, &summary); err != nil {
			runLogger.WithError(err).WithField("archive", archivePath).Error("Skipping unreadable result archive")
			summary.Failed++
		}
	}

	runLogger.WithFields(logrus.Fields{
		"visualized": summary.Visualized,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
	}).Info("Batch processing finished")
	return summary, nil
}

func (app *App) processArchive(ctx context.Context, runID, archivePath string, summary *BatchSummary) error {
	archive, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("error opening result archive: %w", err)
	}
	defer archive.Close()

	entries := make(map[string]*zip.File, len(archive.File))
	for _, f := range archive.File {
		entries[f.Name] = f
	}

	for _, f := range archive.File {
		if !strings.HasSuffix(f.Name, ".json") {
			continue
		}
		entryLogger := log.WithFields(logrus.Fields{
			"archive": archivePath,
			"entry":   f.Name,
		})

		if !forceRevisualize && app.Database != nil {
			done, err := HasCompletedRun(app.Database, archivePath, f.Name)
			if err != nil {
				entryLogger.WithError(err).Warn("Cannot query run history, processing entry anyway")
			} else if done {
				entryLogger.Info("Already visualized, skipping")
				summary.Skipped++
				continue
			}
		}

		data, err := readZipEntry(f)
		if err != nil {
			entryLogger.WithError(err).Error("Cannot read archive entry, skipping")
			summary.Failed++
			continue
		}
		doc, err := docmodel.ParseDocument(data)
		if err != nil {
			entryLogger.WithError(err).Error("Cannot parse document JSON, skipping")
			summary.Failed++
			continue
		}

		base := strings.TrimSuffix(f.Name, ".json")
		cells := app.readCells(entries, base, entryLogger)

		docName := filepath.Base(base)
		outPath, pages, err := app.VisualizeDocument(ctx, docName, doc, cells)

		record := RunRecord{
			RunID:   runID,
			Archive: archivePath,
			Entry:   f.Name,
			Pages:   pages,
		}
		if err != nil {
			entryLogger.WithError(err).Error("Visualization failed")
			summary.Failed++
			record.Status = "failed"
		} else {
			summary.Visualized++
			record.Status = "completed"
			record.OutputPath = outPath
		}
		if app.Database != nil {
			if err := InsertRunRecord(app.Database, record); err != nil {
				entryLogger.WithError(err).Warn("Failed to record run history")
			}
		}
	}
	return nil
}

// readCells loads the optional text-cells entry sitting next to a document
// entry. Any problem only disables the cells layer for that document.
func (app *App) readCells(entries map[string]*zip.File, base string, entryLogger *logrus.Entry) *docmodel.CellsData {
	if !app.Options.ShowTextCellBoxes {
		return nil
	}
	cf, ok := entries[base+".cells"]
	if !ok {
		entryLogger.Debug("No cells entry in archive")
		return nil
	}
	data, err := readZipEntry(cf)
	if err != nil {
		entryLogger.WithError(err).Warn("Cannot read cells entry, cells layer disabled")
		return nil
	}
	cells, err := docmodel.ParseCells(data)
	if err != nil {
		entryLogger.WithError(err).Warn("Cannot parse cells entry, cells layer disabled")
		return nil
	}
	return cells
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
