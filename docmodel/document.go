package docmodel

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogLevel sets the logging level for the docmodel package
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// BBox is a bounding box in PDF coordinate space (origin bottom-left,
// Y increasing upward), ordered (x0, y0, x1, y1) with x0 <= x1 and y0 <= y1.
type BBox struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// Element is one detected layout unit: a type label, a 1-based page number
// and a bounding box in PDF coordinate space.
type Element struct {
	Page int
	Type string
	BBox BBox
}

// PageDims holds the layout dimensions of one page, in the same unit as the
// element bounding boxes.
type PageDims struct {
	Page   int
	Width  float64
	Height float64
}

// Document wraps the converted-document JSON. The decoded structure is kept
// as generic JSON values (map[string]any / []any) so that reference paths can
// be walked across the whole document.
type Document struct {
	root map[string]any
}

// ParseDocument decodes the converted-document JSON produced by the
// conversion service.
func ParseDocument(data []byte) (*Document, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("error parsing converted document JSON: %w", err)
	}
	return &Document{root: root}, nil
}

// MainText returns the ordered top-level content entries of the document.
// Each entry is either an inline element or a reference object.
func (d *Document) MainText() []map[string]any {
	raw, ok := d.root["main-text"].([]any)
	if !ok {
		log.Warn("Document has no main-text sequence")
		return nil
	}
	entries := make([]map[string]any, 0, len(raw))
	for i, e := range raw {
		m, ok := e.(map[string]any)
		if !ok {
			log.WithField("index", i).Warn("Skipping non-object main-text entry")
			continue
		}
		entries = append(entries, m)
	}
	return entries
}

// PageDimensions returns the per-page layout dimensions keyed by 1-based
// page number.
func (d *Document) PageDimensions() map[int]PageDims {
	raw, ok := d.root["page-dimensions"].([]any)
	if !ok {
		log.Warn("Document has no page-dimensions sequence")
		return nil
	}
	dims := make(map[int]PageDims, len(raw))
	for i, e := range raw {
		m, ok := e.(map[string]any)
		if !ok {
			log.WithField("index", i).Warn("Skipping non-object page-dimensions entry")
			continue
		}
		page, okP := asFloat(m["page"])
		width, okW := asFloat(m["width"])
		height, okH := asFloat(m["height"])
		if !okP || !okW || !okH {
			log.WithField("index", i).Warn("Skipping page-dimensions entry with missing fields")
			continue
		}
		dims[int(page)] = PageDims{Page: int(page), Width: width, Height: height}
	}
	return dims
}

// PageBoxMap groups elements by 1-based page number, preserving the order in
// which they were appended to each page.
type PageBoxMap struct {
	boxes map[int][]Element
}

// NewPageBoxMap returns an empty PageBoxMap.
func NewPageBoxMap() *PageBoxMap {
	return &PageBoxMap{boxes: make(map[int][]Element)}
}

// Append adds an element to its page, keeping encounter order.
func (m *PageBoxMap) Append(el Element) {
	m.boxes[el.Page] = append(m.boxes[el.Page], el)
}

// Boxes returns the elements recorded for the given page, in encounter order.
func (m *PageBoxMap) Boxes(page int) []Element {
	return m.boxes[page]
}

// Pages returns the page numbers that carry at least one element, ascending.
func (m *PageBoxMap) Pages() []int {
	pages := make([]int, 0, len(m.boxes))
	for page := range m.boxes {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}

// Len returns the number of pages carrying elements.
func (m *PageBoxMap) Len() int {
	return len(m.boxes)
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
