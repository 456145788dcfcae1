package imaging

import (
	"image/color"
	"testing"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/geometry"
)

func TestRenderBinaryMask(t *testing.T) {
	mask := &geometry.BinaryMask{
		Bitmap: []uint8{1, 0, 0, 1},
		Origin: [2]int{2, 3},
		Extent: [2]int{2, 2},
	}
	red := color.RGBA{255, 0, 0, 255}

	img, err := RenderBinaryMask(mask, 10, 10, 1, red)
	if err != nil {
		t.Fatalf("RenderBinaryMask failed: %v", err)
	}

	tests := []struct {
		x, y int
		set  bool
	}{
		{2, 3, true},
		{3, 3, false},
		{2, 4, false},
		{3, 4, true},
		{0, 0, false},
	}
	for _, tt := range tests {
		got := img.RGBAAt(tt.x, tt.y)
		if tt.set && got != red {
			t.Errorf("(%d,%d): got %v, want red", tt.x, tt.y, got)
		}
		if !tt.set && got.A != 0 {
			t.Errorf("(%d,%d): got %v, want transparent", tt.x, tt.y, got)
		}
	}
}

func TestRenderBinaryMask_Zoom(t *testing.T) {
	mask := &geometry.BinaryMask{Bitmap: []uint8{1}, Origin: [2]int{1, 1}, Extent: [2]int{1, 1}}
	white := color.RGBA{255, 255, 255, 255}

	img, err := RenderBinaryMask(mask, 4, 4, 2, white)
	if err != nil {
		t.Fatalf("RenderBinaryMask failed: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Fatalf("zoomed size: got %v, want 8x8", img.Bounds())
	}

	// The single mask pixel becomes a 2x2 block at (2,2).
	for _, p := range [][2]int{{2, 2}, {3, 2}, {2, 3}, {3, 3}} {
		if img.RGBAAt(p[0], p[1]) != white {
			t.Errorf("(%d,%d) not painted", p[0], p[1])
		}
	}
	if img.RGBAAt(4, 4).A != 0 || img.RGBAAt(1, 1).A != 0 {
		t.Error("zoom painted outside the mask block")
	}
}

func TestRenderBinaryMask_BoxOnly(t *testing.T) {
	mask := geometry.BoxToBinaryMask(geometry.Box{1, 1, 4, 3})
	green := color.RGBA{0, 255, 0, 255}

	img, err := RenderBinaryMask(mask, 10, 10, 1, green)
	if err != nil {
		t.Fatalf("RenderBinaryMask failed: %v", err)
	}
	if img.RGBAAt(1, 1) != green || img.RGBAAt(5, 4) != green || img.RGBAAt(3, 1) != green {
		t.Error("outline not drawn")
	}
	if img.RGBAAt(3, 2).A != 0 {
		t.Error("interior of a box-only mask should stay empty")
	}
}

func TestRenderBinaryMask_Invalid(t *testing.T) {
	mask := &geometry.BinaryMask{Bitmap: []uint8{1}, Extent: [2]int{1, 1}}

	tests := []struct {
		name string
		mask *geometry.BinaryMask
		w, h int
		zoom float64
	}{
		{"nil mask", nil, 4, 4, 1},
		{"empty canvas", mask, 0, 4, 1},
		{"zero zoom", mask, 4, 4, 0},
		{"huge zoom", mask, 4, 4, MaxZoom + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RenderBinaryMask(tt.mask, tt.w, tt.h, tt.zoom, color.White); err == nil {
				t.Error("RenderBinaryMask should fail")
			}
		})
	}
}
