package docmodel

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ExtractPageBoxes collects every main-text element carrying provenance and
// groups them per page, preserving the order they appear in the document.
//
// Only the first provenance record of an element is used; an element spanning
// several pages is attributed to its first page only. This is a known
// limitation inherited from single-location elements being the common case.
func ExtractPageBoxes(doc *Document) *PageBoxMap {
	clusters := NewPageBoxMap()
	for i, raw := range doc.MainText() {
		item := doc.Resolve(raw)

		prov, ok := item["prov"].([]any)
		if !ok || len(prov) == 0 {
			log.WithFields(logrus.Fields{
				"index": i,
				"type":  item["type"],
			}).Warn("Element has no provenance, skipping")
			continue
		}
		first, ok := prov[0].(map[string]any)
		if !ok {
			log.WithField("index", i).Warn("Element provenance entry is not an object, skipping")
			continue
		}

		page, ok := asFloat(first["page"])
		if !ok {
			log.WithField("index", i).Warn("Element provenance has no page number, skipping")
			continue
		}
		bbox, ok := bboxFromAny(first["bbox"])
		if !ok {
			log.WithField("index", i).Warn("Element provenance has no valid bbox, skipping")
			continue
		}
		label, _ := item["type"].(string)

		clusters.Append(Element{
			Page: int(page),
			Type: label,
			BBox: bbox,
		})
	}
	return clusters
}

// CellsData wraps the raw text-cells JSON produced alongside the converted
// document. Each cell row is [page, x0, y0, x1, y1, label, ...] with a
// 0-based page index.
type CellsData struct {
	root map[string]any
}

// ParseCells decodes the text-cells JSON.
func ParseCells(data []byte) (*CellsData, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("error parsing cells JSON: %w", err)
	}
	return &CellsData{root: root}, nil
}

// ExtractCellBoxes collects the raw PDF text cells and groups them per page.
// Page indices are shifted from 0-based to 1-based to line up with the
// converted document. Malformed rows are skipped.
func ExtractCellBoxes(cells *CellsData) *PageBoxMap {
	boxes := NewPageBoxMap()
	if cells == nil {
		return boxes
	}

	wrapper, ok := cells.root["cells"].(map[string]any)
	if !ok {
		log.Warn("Cells data has no cells object")
		return boxes
	}
	rows, ok := wrapper["data"].([]any)
	if !ok {
		log.Warn("Cells data has no data rows")
		return boxes
	}

	for i, r := range rows {
		row, ok := r.([]any)
		if !ok || len(row) < 6 {
			log.WithField("row", i).Warn("Skipping malformed cell row")
			continue
		}
		page, okP := asFloat(row[0])
		x0, ok0 := asFloat(row[1])
		y0, ok1 := asFloat(row[2])
		x1, ok2 := asFloat(row[3])
		y1, ok3 := asFloat(row[4])
		label, okL := row[5].(string)
		if !okP || !ok0 || !ok1 || !ok2 || !ok3 || !okL {
			log.WithField("row", i).Warn("Skipping cell row with non-numeric coordinates")
			continue
		}
		boxes.Append(Element{
			Page: int(page) + 1,
			Type: label,
			BBox: BBox{X0: x0, Y0: y0, X1: x1, Y1: y1},
		})
	}
	return boxes
}

func bboxFromAny(v any) (BBox, bool) {
	coords, ok := v.([]any)
	if !ok || len(coords) < 4 {
		return BBox{}, false
	}
	x0, ok0 := asFloat(coords[0])
	y0, ok1 := asFloat(coords[1])
	x1, ok2 := asFloat(coords[2])
	y1, ok3 := asFloat(coords[3])
	if !ok0 || !ok1 || !ok2 || !ok3 {
		return BBox{}, false
	}
	return BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}, true
}
