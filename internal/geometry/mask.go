package geometry

import (
	"encoding/json"
	"fmt"
	"math"
)

// BinaryMask is a rasterized 0/1 pixel grid stored relative to its own extent.
//
// Bitmap is row-major and holds Extent[0]*Extent[1] values, except for masks
// synthesized from a bounding box alone (see BoxToBinaryMask), whose Bitmap
// is empty while Extent still describes the box.
type BinaryMask struct {
	// Bitmap holds one 0/1 value per pixel, row by row.
	Bitmap []uint8

	// Origin is [minX, minY] of the mask in image space.
	Origin [2]int

	// Extent is [width, height] of the mask.
	Extent [2]int
}

// MaxMaskPixels is the largest number of pixels a mask may be rasterized
// into. Masks are sized by the coordinates in a file rather than by the
// file's length, so the cap keeps a small file from forcing a large
// allocation.
const MaxMaskPixels = 1 << 24

// MaskFits reports whether a mask of the given [width, height] may be
// rasterized: both sides non-negative and at most MaxMaskPixels pixels.
func MaskFits(extent [2]int) bool {
	w, h := extent[0], extent[1]
	if w < 0 || h < 0 || w > MaxMaskPixels || h > MaxMaskPixels {
		return false
	}
	return w*h <= MaxMaskPixels
}

// BoxToFilledMask rasterizes the interior of a box directly: a pixel is set
// when it lies inside the box or on its edge. For a box with positive width
// and height the result equals PolygonToBinaryMask(b.Corners()). Returns nil
// when MaskFits rejects the extent.
func BoxToFilledMask(b Box) *BinaryMask {
	corners := b.Corners()
	origin, extent, ok := PolygonExtent(corners)
	if !ok || !MaskFits(extent) {
		return nil
	}
	minX, maxX := math.Min(corners[0].X, corners[2].X), math.Max(corners[0].X, corners[2].X)
	minY, maxY := math.Min(corners[0].Y, corners[2].Y), math.Max(corners[0].Y, corners[2].Y)

	bitmap := make([]uint8, extent[0]*extent[1])
	for row := 0; row < extent[1]; row++ {
		y := float64(origin[1] + row)
		if y < minY || y > maxY {
			continue
		}
		line := bitmap[row*extent[0] : (row+1)*extent[0]]
		for col := range line {
			if x := float64(origin[0] + col); x >= minX && x <= maxX {
				line[col] = 1
			}
		}
	}
	return &BinaryMask{Bitmap: bitmap, Origin: origin, Extent: extent}
}

// BoxToBinaryMask synthesizes a mask from a bounding box without rasterizing
// its interior: origin and extent follow the box and the bitmap is empty.
func BoxToBinaryMask(b Box) *BinaryMask {
	return &BinaryMask{
		Bitmap: []uint8{},
		Origin: [2]int{int(math.Floor(b[0])), int(math.Floor(b[1]))},
		Extent: [2]int{int(math.Floor(b[2])), int(math.Floor(b[3]))},
	}
}

// IsRasterized reports whether the mask carries pixel data.
func (m *BinaryMask) IsRasterized() bool {
	return m != nil && len(m.Bitmap) > 0
}

// At returns the mask value at (x, y) in image space. Pixels outside the
// extent, and every pixel of an unrasterized mask, read as 0.
func (m *BinaryMask) At(x, y int) uint8 {
	if !m.IsRasterized() {
		return 0
	}
	col, row := x-m.Origin[0], y-m.Origin[1]
	if col < 0 || row < 0 || col >= m.Extent[0] || row >= m.Extent[1] {
		return 0
	}
	return m.Bitmap[row*m.Extent[0]+col]
}

// Count returns the number of set pixels.
func (m *BinaryMask) Count() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, v := range m.Bitmap {
		if v != 0 {
			n++
		}
	}
	return n
}

// Validate checks that the bitmap length matches the extent.
func (m *BinaryMask) Validate() error {
	if m.Extent[0] < 0 || m.Extent[1] < 0 {
		return fmt.Errorf("negative mask extent %dx%d", m.Extent[0], m.Extent[1])
	}
	if len(m.Bitmap) == 0 {
		return nil
	}
	if want := m.Extent[0] * m.Extent[1]; len(m.Bitmap) != want {
		return fmt.Errorf("mask bitmap has %d values, extent %dx%d needs %d",
			len(m.Bitmap), m.Extent[0], m.Extent[1], want)
	}
	return nil
}

// MarshalJSON encodes the mask as [bitmap, origin, extent] with the bitmap
// written as a list of integers.
func (m BinaryMask) MarshalJSON() ([]byte, error) {
	bits := make([]int, len(m.Bitmap))
	for i, v := range m.Bitmap {
		bits[i] = int(v)
	}
	return json.Marshal([]interface{}{bits, m.Origin, m.Extent})
}

// UnmarshalJSON decodes the [bitmap, origin, extent] triple.
func (m *BinaryMask) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("binary mask needs 3 parts, got %d", len(parts))
	}

	var bits []int
	if err := json.Unmarshal(parts[0], &bits); err != nil {
		return fmt.Errorf("binary mask bitmap: %w", err)
	}
	var origin, extent [2]int
	if err := json.Unmarshal(parts[1], &origin); err != nil {
		return fmt.Errorf("binary mask origin: %w", err)
	}
	if err := json.Unmarshal(parts[2], &extent); err != nil {
		return fmt.Errorf("binary mask extent: %w", err)
	}

	m.Bitmap = make([]uint8, len(bits))
	for i, v := range bits {
		if v != 0 {
			m.Bitmap[i] = 1
		}
	}
	m.Origin = origin
	m.Extent = extent
	return nil
}
