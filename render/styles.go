package render

import (
	"image/color"
	"strings"
)

// Style pairs the semi-transparent fill used to shade a detected region with
// the color of its 1px outline. A fully transparent outline suppresses the
// border.
type Style struct {
	Fill    color.NRGBA
	Outline color.NRGBA
}

// StyleMap maps a lower-cased element type label to its drawing style.
type StyleMap map[string]Style

// DefaultStyle is used for any label missing from the map: gray shading
// without a border.
var DefaultStyle = Style{
	Fill:    color.NRGBA{R: 128, G: 128, B: 128, A: 100},
	Outline: color.NRGBA{},
}

// Lookup returns the style for the given type label, case-insensitively.
// Unknown labels fall back to DefaultStyle so that drawing never aborts.
func (m StyleMap) Lookup(label string) Style {
	if s, ok := m[strings.ToLower(label)]; ok {
		return s
	}
	return DefaultStyle
}

var redOutline = color.NRGBA{R: 255, A: 255}

// DefaultClusterStyles returns the style table for layout-element boxes:
// per-label fills with a red outline.
func DefaultClusterStyles() StyleMap {
	return StyleMap{
		"table":            {Fill: color.NRGBA{R: 240, G: 128, B: 128, A: 100}, Outline: redOutline},
		"caption":          {Fill: color.NRGBA{R: 243, G: 156, B: 18, A: 100}, Outline: redOutline},
		"citation":         {Fill: color.NRGBA{R: 14, G: 210, B: 234, A: 100}, Outline: redOutline},
		"picture":          {Fill: color.NRGBA{R: 255, G: 236, B: 204, A: 100}, Outline: redOutline},
		"formula":          {Fill: color.NRGBA{R: 128, G: 139, B: 150, A: 100}, Outline: redOutline},
		"subtitle-level-1": {Fill: color.NRGBA{R: 204, G: 51, B: 102, A: 100}, Outline: redOutline},
		"paragraph":        {Fill: color.NRGBA{R: 234, G: 234, B: 43, A: 100}, Outline: redOutline},
	}
}

// DefaultCellStyles returns the style table for raw text-cell boxes: the same
// fills as the cluster layer but without a border, so the denser cell layer
// stays readable underneath.
func DefaultCellStyles() StyleMap {
	return StyleMap{
		"table":            {Fill: color.NRGBA{R: 240, G: 128, B: 128, A: 100}},
		"caption":          {Fill: color.NRGBA{R: 243, G: 156, B: 18, A: 100}},
		"citation":         {Fill: color.NRGBA{R: 14, G: 210, B: 234, A: 100}},
		"picture":          {Fill: color.NRGBA{R: 255, G: 236, B: 204, A: 100}},
		"formula":          {Fill: color.NRGBA{R: 128, G: 139, B: 150, A: 100}},
		"subtitle-level-1": {Fill: color.NRGBA{R: 204, G: 51, B: 102, A: 100}},
		"paragraph":        {Fill: color.NRGBA{R: 234, G: 234, B: 43, A: 100}},
	}
}
