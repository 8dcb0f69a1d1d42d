package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/likelyzhao/ibmds-mmbvc/docmodel"
)

// DrawBoxes paints one filled, outlined rectangle per element onto img.
// pageHeight is the pixel height used for the Y-axis flip. Boxes are painted
// in slice order, so later boxes overdraw earlier ones where they overlap.
// A label missing from styles gets DefaultStyle; nothing here can abort the
// drawing of the remaining boxes.
//
// Both rectangle corners are painted inclusively: a box from (50,50) to
// (550,100) covers columns 50 through 550 and rows 50 through 100.
func DrawBoxes(img draw.Image, pageHeight float64, boxes []docmodel.Element, styles StyleMap) {
	for _, box := range boxes {
		rect := ToRasterRect(box.BBox, pageHeight)
		// Inclusive max corner.
		rect.Max.X++
		rect.Max.Y++

		style := styles.Lookup(box.Type)
		fillRect(img, rect, style.Fill)
		if style.Outline.A > 0 {
			outlineRect(img, rect, style.Outline)
		}
	}
}

// DrawPageBorder draws a 1px black border along the edges of the canvas.
func DrawPageBorder(img draw.Image) {
	outlineRect(img, img.Bounds(), color.NRGBA{A: 255})
}

func fillRect(img draw.Image, rect image.Rectangle, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	draw.Draw(img, rect.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

func outlineRect(img draw.Image, rect image.Rectangle, c color.NRGBA) {
	top := image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+1)
	bottom := image.Rect(rect.Min.X, rect.Max.Y-1, rect.Max.X, rect.Max.Y)
	left := image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+1, rect.Max.Y)
	right := image.Rect(rect.Max.X-1, rect.Min.Y, rect.Max.X, rect.Max.Y)
	for _, edge := range []image.Rectangle{top, bottom, left, right} {
		draw.Draw(img, edge.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
	}
}
