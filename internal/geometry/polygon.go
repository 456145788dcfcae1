package geometry

import "math"

// rayLimit is the x coordinate the point-in-polygon ray is cast to. It stands
// in for +infinity; a true infinity would turn the orientation products into
// NaN for horizontal edges.
const rayLimit = 1e9

// Orientation values returned by orientation.
const (
	colinear         = 0
	clockwise        = 1
	counterClockwise = 2
)

// orientation classifies the ordered triplet (p, q, r).
func orientation(p, q, r Point) int {
	val := (q.Y-p.Y)*(r.X-q.X) - (q.X-p.X)*(r.Y-q.Y)
	switch {
	case val == 0:
		return colinear
	case val > 0:
		return clockwise
	default:
		return counterClockwise
	}
}

// onSegment reports whether q lies within the span of segment pr, assuming
// the three points are colinear.
func onSegment(p, q, r Point) bool {
	return q.X <= math.Max(p.X, r.X) && q.X >= math.Min(p.X, r.X) &&
		q.Y <= math.Max(p.Y, r.Y) && q.Y >= math.Min(p.Y, r.Y)
}

// segmentsIntersect reports whether segment p1q1 intersects segment p2q2,
// including the colinear and touching cases.
func segmentsIntersect(p1, q1, p2, q2 Point) bool {
	o1 := orientation(p1, q1, p2)
	o2 := orientation(p1, q1, q2)
	o3 := orientation(p2, q2, p1)
	o4 := orientation(p2, q2, q1)

	if o1 != o2 && o3 != o4 {
		return true
	}

	// Colinear special cases
	if o1 == colinear && onSegment(p1, p2, q1) {
		return true
	}
	if o2 == colinear && onSegment(p1, q2, q1) {
		return true
	}
	if o3 == colinear && onSegment(p2, p1, q2) {
		return true
	}
	if o4 == colinear && onSegment(p2, q1, q2) {
		return true
	}
	return false
}

// PointInPolygon reports whether p lies inside the polygon described by
// vertices, using the even-odd rule.
//
// A ray is cast from p towards +x at p's y coordinate and the edges it
// crosses are counted. When p is colinear with an edge the ray touches, the
// answer is decided by that edge alone: p is inside only if it lies within
// the edge's span. Points on the boundary are therefore inside.
//
// Polygons with fewer than three vertices never contain any point.
//
// Example:
//
//	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
//	PointInPolygon(square, Point{5, 5})  // true
//	PointInPolygon(square, Point{15, 5}) // false
//	PointInPolygon(square, Point{5, 0})  // true (on an edge)
func PointInPolygon(vertices []Point, p Point) bool {
	n := len(vertices)
	if n < 3 {
		return false
	}

	extreme := Point{X: rayLimit, Y: p.Y}
	count := 0
	i := 0
	for {
		next := (i + 1) % n
		if segmentsIntersect(vertices[i], vertices[next], p, extreme) {
			if orientation(vertices[i], p, vertices[next]) == colinear {
				return onSegment(vertices[i], p, vertices[next])
			}
			count++
		}
		i = next
		if i == 0 {
			break
		}
	}
	return count%2 == 1
}

// PolygonExtent returns the floored integer bounds of a vertex set as
// origin [minX, minY] and extent [width, height]. ok is false for an empty
// vertex set.
func PolygonExtent(vertices []Point) (origin, extent [2]int, ok bool) {
	if len(vertices) == 0 {
		return origin, extent, false
	}
	minX, minY := vertices[0].X, vertices[0].Y
	maxX, maxY := minX, minY
	for _, v := range vertices[1:] {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	baseX, baseY := int(math.Floor(minX)), int(math.Floor(minY))
	origin = [2]int{baseX, baseY}
	extent = [2]int{int(math.Floor(maxX)) - baseX, int(math.Floor(maxY)) - baseY}
	return origin, extent, true
}

// PolygonToBinaryMask rasterizes a polygon into a BinaryMask.
//
// The mask covers the floored bounding extent of the vertices. Each pixel
// (x, y) in that extent is tested with PointInPolygon and set to 1 when
// inside, 0 otherwise. Rows are stored top to bottom.
//
// Returns nil for an empty vertex set and for an extent MaskFits rejects. A
// non-empty set with fewer than three vertices yields a mask of the right
// extent with no pixels set.
func PolygonToBinaryMask(vertices []Point) *BinaryMask {
	origin, extent, ok := PolygonExtent(vertices)
	if !ok || !MaskFits(extent) {
		return nil
	}

	width, height := extent[0], extent[1]
	bitmap := make([]uint8, 0, width*height)
	for y := origin[1]; y < origin[1]+height; y++ {
		for x := origin[0]; x < origin[0]+width; x++ {
			if PointInPolygon(vertices, Point{X: float64(x), Y: float64(y)}) {
				bitmap = append(bitmap, 1)
			} else {
				bitmap = append(bitmap, 0)
			}
		}
	}

	return &BinaryMask{
		Bitmap: bitmap,
		Origin: origin,
		Extent: extent,
	}
}
