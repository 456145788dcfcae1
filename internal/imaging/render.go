package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/geometry"
)

// MaxZoom bounds RenderBinaryMask's zoom factor.
const MaxZoom = 16.0

// RenderBinaryMask paints a binary mask onto a transparent width x height
// canvas and scales the result by zoom with nearest-neighbour sampling, so
// mask pixels stay crisp squares.
//
// Set pixels are painted in c. A mask without a bitmap (synthesized from a
// bounding box alone) is drawn as the one-pixel outline of its extent.
// Pixels that fall outside the canvas are clipped.
func RenderBinaryMask(m *geometry.BinaryMask, width, height int, zoom float64, c color.Color) (*image.RGBA, error) {
	if m == nil {
		return nil, fmt.Errorf("no mask to render")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	if zoom <= 0 || zoom > MaxZoom {
		return nil, fmt.Errorf("zoom %v outside (0, %v]", zoom, MaxZoom)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	ox, oy := m.Origin[0], m.Origin[1]
	w, h := m.Extent[0], m.Extent[1]

	if m.IsRasterized() {
		for row := 0; row < h; row++ {
			for col := 0; col < w; col++ {
				if m.Bitmap[row*w+col] != 0 {
					canvas.Set(ox+col, oy+row, c)
				}
			}
		}
	} else {
		for col := 0; col <= w; col++ {
			canvas.Set(ox+col, oy, c)
			canvas.Set(ox+col, oy+h, c)
		}
		for row := 0; row <= h; row++ {
			canvas.Set(ox, oy+row, c)
			canvas.Set(ox+w, oy+row, c)
		}
	}

	if zoom == 1 {
		return canvas, nil
	}
	zw := int(math.Max(1, math.Round(float64(width)*zoom)))
	zh := int(math.Max(1, math.Round(float64(height)*zoom)))
	scaled := image.NewRGBA(image.Rect(0, 0, zw, zh))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	return scaled, nil
}
