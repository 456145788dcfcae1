package geometry

import "math"

// Point is a 2D coordinate in image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is a canonical bounding box: [x, y, width, height].
//
// Width and height are never negative for boxes produced by this package.
type Box [4]float64

// X returns the left edge of the box.
func (b Box) X() float64 { return b[0] }

// Y returns the top edge of the box.
func (b Box) Y() float64 { return b[1] }

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b[2] }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b[3] }

// Area returns |width * height|.
func (b Box) Area() float64 {
	return math.Abs(b[2] * b[3])
}

// Corners returns the four corners of the box clockwise, starting at (x, y).
func (b Box) Corners() []Point {
	x, y, w, h := b[0], b[1], b[2], b[3]
	return []Point{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
}

// CocoBoxToBoundingBox converts a two-corner box [x1, y1, x2, y2] into the
// canonical [x, y, width, height] form.
//
// The first corner is kept as the origin. Width and height are the absolute
// differences between the corners, so a box given with its corners swapped
// still has a non-negative size.
//
// Example:
//
//	CocoBoxToBoundingBox([4]float64{10, 20, 40, 60}) // Box{10, 20, 30, 40}
func CocoBoxToBoundingBox(corners [4]float64) Box {
	x1, y1, x2, y2 := corners[0], corners[1], corners[2], corners[3]
	return Box{x1, y1, math.Abs(x2 - x1), math.Abs(y2 - y1)}
}

// BoundingBoxToCorners converts a canonical box back to [x1, y1, x2, y2].
func BoundingBoxToCorners(b Box) [4]float64 {
	return [4]float64{b[0], b[1], b[0] + b[2], b[1] + b[3]}
}
