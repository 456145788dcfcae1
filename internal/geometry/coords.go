package geometry

// Anchor locates a polygon vertex relative to the walls of its bounding box.
// Each value is the distance from that wall as a percentage of the box's
// width (Left, Right) or height (Top, Bottom).
type Anchor struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// PolygonPoint is one polygon vertex in image space, optionally anchored to
// the detection's bounding box.
type PolygonPoint struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Anchor *Anchor `json:"anchor,omitempty"`
}

// CoordinatesToPolygonData converts a flat [x1, y1, x2, y2, ...] list into
// polygon points. A trailing unpaired value is ignored.
//
// When box is non-nil and has a positive width and height, every point is
// also given an Anchor relative to the box walls, which lets the outline
// follow the box when it is moved or resized.
func CoordinatesToPolygonData(coords []float64, box *Box) []PolygonPoint {
	points := make([]PolygonPoint, 0, len(coords)/2)
	anchored := box != nil && box[2] > 0 && box[3] > 0
	for i := 0; i+1 < len(coords); i += 2 {
		p := PolygonPoint{X: coords[i], Y: coords[i+1]}
		if anchored {
			p.Anchor = anchorFor(*box, p.X, p.Y)
		}
		points = append(points, p)
	}
	return points
}

func anchorFor(b Box, x, y float64) *Anchor {
	bx, by, w, h := b[0], b[1], b[2], b[3]
	return &Anchor{
		Top:    (y - by) / h * 100,
		Bottom: (by + h - y) / h * 100,
		Left:   (x - bx) / w * 100,
		Right:  (bx + w - x) / w * 100,
	}
}

// PolygonDataToXYArray flattens polygon points back into [x1, y1, x2, y2, ...].
//
// Anchored points are resolved against box when one is given, so an outline
// follows an edited bounding box. Points without an anchor, or calls with a
// nil or degenerate box, use the stored absolute coordinates.
func PolygonDataToXYArray(points []PolygonPoint, box *Box) []float64 {
	coords := make([]float64, 0, len(points)*2)
	resolve := box != nil && box[2] > 0 && box[3] > 0
	for _, p := range points {
		x, y := p.X, p.Y
		if resolve && p.Anchor != nil {
			x = box[0] + p.Anchor.Left/100*box[2]
			y = box[1] + p.Anchor.Top/100*box[3]
		}
		coords = append(coords, x, y)
	}
	return coords
}

// Vertices returns the absolute coordinates of the points.
func Vertices(points []PolygonPoint) []Point {
	vertices := make([]Point, len(points))
	for i, p := range points {
		vertices[i] = Point{X: p.X, Y: p.Y}
	}
	return vertices
}
