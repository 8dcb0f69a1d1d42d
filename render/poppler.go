package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sirupsen/logrus"
)

const defaultRenderTimeout = 60 * time.Second

// PopplerRasterizer renders pages by shelling out to the pdftoppm executable
// of the Poppler library.
type PopplerRasterizer struct {
	timeout time.Duration
}

func newPopplerRasterizer(config RasterConfig) *PopplerRasterizer {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	return &PopplerRasterizer{timeout: timeout}
}

// RenderPage rasterizes one page via pdftoppm, cropped to the page content
// box. The call is bounded by the configured timeout. A non-zero exit status
// surfaces as a *PageRenderError carrying that status.
func (r *PopplerRasterizer) RenderPage(ctx context.Context, pdfPath string, page int, dpi int) (image.Image, error) {
	if err := validatePage(pdfPath, page); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	outDir, err := os.MkdirTemp("", "pageimg-*")
	if err != nil {
		return nil, fmt.Errorf("error creating temp directory for page image: %w", err)
	}
	defer os.RemoveAll(outDir)

	outPrefix := filepath.Join(outDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-singlefile",
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-cropbox",
		"-r", strconv.Itoa(dpi),
		pdfPath,
		outPrefix,
	)

	log.WithFields(logrus.Fields{
		"pdf":  pdfPath,
		"page": page,
		"dpi":  dpi,
	}).Debug("Invoking pdftoppm")

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return nil, &PageRenderError{Page: page, ExitCode: exitCode, Err: err}
	}

	f, err := os.Open(outPrefix + ".png")
	if err != nil {
		return nil, &PageRenderError{Page: page, ExitCode: -1, Err: fmt.Errorf("pdftoppm produced no output: %w", err)}
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, &PageRenderError{Page: page, ExitCode: -1, Err: fmt.Errorf("error decoding page image: %w", err)}
	}
	return img, nil
}

// validatePage rejects page numbers outside the document before a process is
// spawned. The page count comes from pdfcpu.
func validatePage(pdfPath string, page int) error {
	if page < 1 {
		return &PageRenderError{Page: page, ExitCode: -1, Err: fmt.Errorf("page numbers are 1-based")}
	}
	count, err := api.PageCountFile(pdfPath)
	if err != nil {
		return &PageRenderError{Page: page, ExitCode: -1, Err: fmt.Errorf("error reading page count: %w", err)}
	}
	if page > count {
		return &PageRenderError{Page: page, ExitCode: -1, Err: fmt.Errorf("page out of range: document has %d page(s)", count)}
	}
	return nil
}
