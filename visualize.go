package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"image"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/likelyzhao/ibmds-mmbvc/docmodel"
	"github.com/likelyzhao/ibmds-mmbvc/render"
)

// VisualizeDocument renders one converted document into an HTML report:
// every page carrying layout elements becomes one page image with the
// configured box layers drawn on top. It returns the report path and the
// number of pages rendered.
//
// A rasterization failure aborts the whole document (the error carries the
// failing page); per-element problems were already absorbed during
// extraction. The report file appears only after every page was processed.
func (app *App) VisualizeDocument(ctx context.Context, name string, doc *docmodel.Document, cells *docmodel.CellsData) (string, int, error) {
	docLogger := log.WithField("document", name)
	docLogger.Info("Starting visualization")

	clusters := docmodel.ExtractPageBoxes(doc)
	if clusters.Len() == 0 {
		docLogger.Warn("Document has no elements with bounding boxes")
	}
	dims := doc.PageDimensions()

	var cellBoxes *docmodel.PageBoxMap
	if app.Options.ShowTextCellBoxes && cells != nil {
		cellBoxes = docmodel.ExtractCellBoxes(cells)
	}

	clusterStyles := render.DefaultClusterStyles()
	cellStyles := render.DefaultCellStyles()

	var pageCells []PageCell
	for _, page := range clusters.Pages() {
		pageLogger := docLogger.WithField("page", page)

		d, ok := dims[page]
		if !ok {
			pageLogger.Warn("No page dimensions recorded, skipping page")
			continue
		}
		width := int(math.Ceil(d.Width))
		height := int(math.Ceil(d.Height))

		canvas, err := app.pageCanvas(ctx, page, width, height)
		if err != nil {
			return "", 0, err
		}

		render.DrawPageBorder(canvas)
		if cellBoxes != nil {
			render.DrawBoxes(canvas, d.Height, cellBoxes.Boxes(page), cellStyles)
		}
		if app.Options.ShowClusterBoxes {
			render.DrawBoxes(canvas, d.Height, clusters.Boxes(page), clusterStyles)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, canvas); err != nil {
			return "", 0, fmt.Errorf("error encoding page %d image: %w", page, err)
		}
		pageCells = append(pageCells, PageCell{
			Page:   page,
			ImgSrc: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())),
		})
		pageLogger.Debug("Page rendered")
	}

	outPath := filepath.Join(app.OutputDir, name+".html")
	data := ReportData{
		Title:       name,
		GeneratedAt: time.Now(),
		Rows:        chunkRows(pageCells, app.Options.Columns),
	}
	if err := writeReport(outPath, data); err != nil {
		return "", 0, err
	}

	docLogger.WithField("pages", len(pageCells)).Info("Visualization completed")
	return outPath, len(pageCells), nil
}

// pageCanvas produces the background for one page, sized to the document's
// layout dimensions: the rasterized PDF page resized to fit, or a blank
// white canvas when the PDF background is disabled.
func (app *App) pageCanvas(ctx context.Context, page, width, height int) (*image.NRGBA, error) {
	if !app.Options.ShowPDFImage {
		return imaging.New(width, height, color.NRGBA{R: 255, G: 255, B: 255, A: 255}), nil
	}

	img, err := app.Rasterizer.RenderPage(ctx, app.PDFPath, page, app.Options.DPI)
	if err != nil {
		return nil, fmt.Errorf("error rasterizing page %d: %w", page, err)
	}
	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}
