package main

import (
	"html/template"
	"time"
)

// VisualizeOptions selects which layers go into the page images and how the
// report is laid out.
type VisualizeOptions struct {
	ShowPDFImage      bool // rasterize the source PDF page as background
	ShowClusterBoxes  bool // overlay layout-element boxes
	ShowTextCellBoxes bool // overlay raw text-cell boxes
	DPI               int  // rasterization resolution
	Columns           int  // page cells per report row
}

// PageCell is one rendered page of the report: its label and the inline
// PNG data URI.
type PageCell struct {
	Page   int
	ImgSrc template.URL
}

// ReportData feeds the HTML report template.
type ReportData struct {
	Title       string
	GeneratedAt time.Time
	Rows        [][]PageCell
}

// BatchSummary counts the outcome of one batch run over a results directory.
type BatchSummary struct {
	Visualized int
	Skipped    int
	Failed     int
}
