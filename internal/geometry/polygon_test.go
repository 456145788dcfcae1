package geometry

import (
	"math"
	"testing"
)

func unitSquare() []Point {
	return []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
}

func TestPointInPolygon(t *testing.T) {
	square := unitSquare()

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"center", Point{5, 5}, true},
		{"outside right", Point{15, 5}, false},
		{"outside left", Point{-5, 5}, false},
		{"outside above", Point{5, -1}, false},
		{"on bottom edge", Point{5, 0}, true},
		{"on left edge", Point{0, 5}, true},
		{"on corner", Point{10, 10}, true},
		{"colinear beyond edge", Point{-1, 0}, false},
		{"near corner inside", Point{9, 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInPolygon(square, tt.p); got != tt.want {
				t.Errorf("PointInPolygon(%v): got %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPointInPolygon_Degenerate(t *testing.T) {
	tests := []struct {
		name     string
		vertices []Point
	}{
		{"empty", nil},
		{"single point", []Point{{5, 5}}},
		{"segment", []Point{{0, 0}, {10, 10}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if PointInPolygon(tt.vertices, Point{5, 5}) {
				t.Error("polygon with fewer than 3 vertices reported a point inside")
			}
		})
	}
}

func TestPointInPolygon_Triangle(t *testing.T) {
	triangle := []Point{{0, 0}, {20, 0}, {0, 20}}

	if !PointInPolygon(triangle, Point{3, 4}) {
		t.Error("(3,4) should be inside the triangle")
	}
	if PointInPolygon(triangle, Point{15, 15}) {
		t.Error("(15,15) should be outside the triangle")
	}
	if !PointInPolygon(triangle, Point{10, 10}) {
		t.Error("(10,10) lies on the hypotenuse and should be inside")
	}
}

func TestPolygonToBinaryMask_Empty(t *testing.T) {
	if m := PolygonToBinaryMask(nil); m != nil {
		t.Errorf("expected nil mask for empty vertex set, got %+v", m)
	}
}

func TestPolygonToBinaryMask_Square(t *testing.T) {
	m := PolygonToBinaryMask(unitSquare())
	if m == nil {
		t.Fatal("PolygonToBinaryMask returned nil")
	}

	if m.Origin != [2]int{0, 0} {
		t.Errorf("Origin: got %v, want [0 0]", m.Origin)
	}
	if m.Extent != [2]int{10, 10} {
		t.Errorf("Extent: got %v, want [10 10]", m.Extent)
	}
	if len(m.Bitmap) != 100 {
		t.Fatalf("Bitmap length: got %d, want 100", len(m.Bitmap))
	}
	// Every pixel of the extent is inside or on the boundary of the square.
	if m.Count() != 100 {
		t.Errorf("Count: got %d, want 100", m.Count())
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestPolygonToBinaryMask_Triangle(t *testing.T) {
	m := PolygonToBinaryMask([]Point{{10, 10}, {30, 10}, {10, 30}})
	if m == nil {
		t.Fatal("PolygonToBinaryMask returned nil")
	}

	if m.Origin != [2]int{10, 10} {
		t.Errorf("Origin: got %v, want [10 10]", m.Origin)
	}
	if m.At(11, 11) != 1 {
		t.Error("pixel (11,11) should be set")
	}
	if m.At(28, 28) != 0 {
		t.Error("pixel (28,28) should be clear")
	}
	// Roughly half of the 20x20 extent is covered.
	if c := m.Count(); c < 150 || c > 250 {
		t.Errorf("Count: got %d, want about 200", c)
	}
}

func TestPolygonToBinaryMask_FloorsExtent(t *testing.T) {
	m := PolygonToBinaryMask([]Point{{2.7, 3.2}, {12.9, 3.2}, {12.9, 8.8}, {2.7, 8.8}})
	if m == nil {
		t.Fatal("PolygonToBinaryMask returned nil")
	}
	if m.Origin != [2]int{2, 3} {
		t.Errorf("Origin: got %v, want [2 3]", m.Origin)
	}
	if m.Extent != [2]int{10, 5} {
		t.Errorf("Extent: got %v, want [10 5]", m.Extent)
	}
}

func TestPolygonToBinaryMask_BoxCorners(t *testing.T) {
	boxes := []Box{
		{0, 0, 1, 1},
		{5, 7, 20, 3},
		{100, 40, 64, 48},
		{12.5, 8.25, 30.5, 17.75},
	}

	for _, b := range boxes {
		m := PolygonToBinaryMask(b.Corners())
		if m == nil {
			t.Fatalf("box %v: nil mask", b)
		}
		if math.Abs(float64(m.Extent[0])-b.Width()) > 1 || math.Abs(float64(m.Extent[1])-b.Height()) > 1 {
			t.Errorf("box %v: extent %v not within 1 of [%v %v]", b, m.Extent, b.Width(), b.Height())
		}
		if m.Count() == 0 {
			t.Errorf("box %v: mask has no set pixels", b)
		}
	}
}

func TestPolygonToBinaryMask_TooFewVertices(t *testing.T) {
	m := PolygonToBinaryMask([]Point{{0, 0}, {10, 4}})
	if m == nil {
		t.Fatal("non-empty vertex set should still produce a mask")
	}
	if m.Count() != 0 {
		t.Errorf("Count: got %d, want 0 for a 2-vertex polygon", m.Count())
	}
}

func TestPolygonToBinaryMask_ExceedsLimit(t *testing.T) {
	tests := []struct {
		name     string
		vertices []Point
	}{
		{"wide", []Point{{0, 0}, {MaxMaskPixels + 1, 0}, {MaxMaskPixels + 1, 1}, {0, 1}}},
		{"area", []Point{{0, 0}, {6000, 0}, {6000, 6000}, {0, 6000}}},
		{"far corner", []Point{{0, 0}, {1e12, 1e12}, {0, 1e12}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if m := PolygonToBinaryMask(tt.vertices); m != nil {
				t.Errorf("got mask with extent %v, want nil", m.Extent)
			}
		})
	}
}

func TestMaskFits(t *testing.T) {
	tests := []struct {
		extent [2]int
		want   bool
	}{
		{[2]int{0, 0}, true},
		{[2]int{4096, 4096}, true},
		{[2]int{4096, 4097}, false},
		{[2]int{MaxMaskPixels, 1}, true},
		{[2]int{MaxMaskPixels + 1, 0}, false},
		{[2]int{-1, 1}, false},
		{[2]int{1, -1}, false},
	}

	for _, tt := range tests {
		if got := MaskFits(tt.extent); got != tt.want {
			t.Errorf("MaskFits(%v): got %v, want %v", tt.extent, got, tt.want)
		}
	}
}
