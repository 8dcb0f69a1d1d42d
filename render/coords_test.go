package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/likelyzhao/ibmds-mmbvc/docmodel"
)

func TestToRasterRect(t *testing.T) {
	tests := []struct {
		name       string
		bbox       docmodel.BBox
		pageHeight float64
		want       image.Rectangle
	}{
		{
			name:       "y axis flip",
			bbox:       docmodel.BBox{X0: 10, Y0: 20, X1: 30, Y1: 40},
			pageHeight: 100,
			want:       image.Rect(10, 60, 30, 80),
		},
		{
			name:       "box touching the page top",
			bbox:       docmodel.BBox{X0: 0, Y0: 90, X1: 50, Y1: 100},
			pageHeight: 100,
			want:       image.Rect(0, 0, 50, 10),
		},
		{
			name:       "fractional coordinates round half away from zero",
			bbox:       docmodel.BBox{X0: 10.5, Y0: 20.4, X1: 30.5, Y1: 40.6},
			pageHeight: 100,
			want:       image.Rect(11, 59, 31, 80),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToRasterRect(tt.bbox, tt.pageHeight))
		})
	}
}
