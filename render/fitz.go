package render

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// FitzRasterizer renders pages in-process through MuPDF. It needs no
// external executable but links libmupdf.
type FitzRasterizer struct {
	mu sync.Mutex
}

func newFitzRasterizer() *FitzRasterizer {
	return &FitzRasterizer{}
}

// RenderPage rasterizes one page via go-fitz.
func (r *FitzRasterizer) RenderPage(ctx context.Context, pdfPath string, page int, dpi int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, &PageRenderError{Page: page, ExitCode: -1, Err: fmt.Errorf("error opening PDF: %w", err)}
	}
	defer doc.Close()

	if page < 1 || page > doc.NumPage() {
		return nil, &PageRenderError{Page: page, ExitCode: -1, Err: fmt.Errorf("page out of range: document has %d page(s)", doc.NumPage())}
	}

	// libmupdf is not thread-safe
	r.mu.Lock()
	img, err := doc.ImageDPI(page-1, float64(dpi))
	r.mu.Unlock()
	if err != nil {
		return nil, &PageRenderError{Page: page, ExitCode: -1, Err: err}
	}
	return img, nil
}
