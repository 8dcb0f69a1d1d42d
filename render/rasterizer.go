package render

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogLevel sets the logging level for the render package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Rasterizer produces a raster image of one PDF page, cropped to its content
// box, at the requested resolution. page is 1-based.
type Rasterizer interface {
	RenderPage(ctx context.Context, pdfPath string, page int, dpi int) (image.Image, error)
}

// RasterConfig holds the rasterizer configuration
type RasterConfig struct {
	// Backend selects the provider: "poppler" (pdftoppm subprocess) or
	// "fitz" (in-process MuPDF). Empty means poppler.
	Backend string

	// Timeout bounds one pdftoppm invocation. Zero means 60s.
	Timeout time.Duration
}

// NewRasterizer creates a page rasterizer based on configuration
func NewRasterizer(config RasterConfig) (Rasterizer, error) {
	switch config.Backend {
	case "", "poppler":
		log.WithField("timeout", config.Timeout).Info("Using poppler rasterizer")
		return newPopplerRasterizer(config), nil
	case "fitz":
		log.Info("Using fitz rasterizer")
		return newFitzRasterizer(), nil
	default:
		return nil, fmt.Errorf("unsupported raster backend: %s", config.Backend)
	}
}

// PageRenderError reports a failed page rasterization. It is fatal to the
// document being visualized and is never retried. ExitCode carries the
// underlying process exit status, or -1 when no process was involved.
type PageRenderError struct {
	Page     int
	ExitCode int
	Err      error
}

func (e *PageRenderError) Error() string {
	return fmt.Sprintf("rendering page %d failed (exit status %d): %v", e.Page, e.ExitCode, e.Err)
}

func (e *PageRenderError) Unwrap() error {
	return e.Err
}
