package render

import (
	"image"
	"math"

	"github.com/likelyzhao/ibmds-mmbvc/docmodel"
)

// ToRasterRect converts a bounding box from PDF coordinate space (origin
// bottom-left, Y increasing upward) to raster image space (origin top-left,
// Y increasing downward) for a page of pixel height pageHeight:
//
//	left   = round(x0)
//	top    = round(H - y1)
//	right  = round(x1)
//	bottom = round(H - y0)
//
// Rounding is math.Round, i.e. half away from zero. An off-by-one pixel at a
// box edge is acceptable.
func ToRasterRect(b docmodel.BBox, pageHeight float64) image.Rectangle {
	return image.Rect(
		int(math.Round(b.X0)),
		int(math.Round(pageHeight-b.Y1)),
		int(math.Round(b.X1)),
		int(math.Round(pageHeight-b.Y0)),
	)
}
