package imaging

import (
	"encoding/base64"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/geometry"
)

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := Crop(img, 0, 0, 50, 50, 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	if result.Width != 50 || result.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", result.Width, result.Height)
	}

	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	// Verify base64 can be decoded
	_, err = base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Errorf("failed to decode base64: %v", err)
	}
}

func TestCrop_WithScale(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	// Scale up 2x
	result, err := Crop(img, 0, 0, 50, 50, 2.0)
	if err != nil {
		t.Fatalf("Crop with scale failed: %v", err)
	}

	if result.Width != 100 || result.Height != 100 {
		t.Errorf("scaled dimensions: got %dx%d, want 100x100", result.Width, result.Height)
	}
}

func TestCrop_ScaleDown(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	// Scale down 0.5x
	result, err := Crop(img, 0, 0, 100, 100, 0.5)
	if err != nil {
		t.Fatalf("Crop with scale down failed: %v", err)
	}

	if result.Width != 50 || result.Height != 50 {
		t.Errorf("scaled dimensions: got %dx%d, want 50x50", result.Width, result.Height)
	}
}

func TestCrop_OutOfBounds(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"x1 negative", -1, 0, 50, 50},
		{"y1 negative", 0, -1, 50, 50},
		{"x2 too large", 0, 0, 101, 50},
		{"y2 too large", 0, 0, 50, 101},
		{"all out of bounds", -1, -1, 200, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Crop(img, tt.x1, tt.y1, tt.x2, tt.y2, 1.0)
			if err == nil {
				t.Error("Crop should fail for out-of-bounds coordinates")
			}
		})
	}
}

func TestCrop_InvalidRegion(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"x1 >= x2", 50, 0, 50, 50},
		{"x1 > x2", 60, 0, 50, 50},
		{"y1 >= y2", 0, 50, 50, 50},
		{"y1 > y2", 0, 60, 50, 50},
		{"zero area", 50, 50, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Crop(img, tt.x1, tt.y1, tt.x2, tt.y2, 1.0)
			if err == nil {
				t.Error("Crop should fail for invalid region")
			}
		})
	}
}

func TestCrop_FullImage(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	result, err := Crop(img, 0, 0, 100, 100, 1.0)
	if err != nil {
		t.Fatalf("Crop full image failed: %v", err)
	}

	if result.Width != 100 || result.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", result.Width, result.Height)
	}
}

func TestCrop_VerifyContent(t *testing.T) {
	img := createPatternImage(100, 100)

	// Crop top-left quadrant (should be red)
	result, err := Crop(img, 0, 0, 50, 50, 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	// Decode the result and verify color
	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}

	croppedImg, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}

	// Sample center pixel - should be red
	r, g, b, _ := croppedImg.At(25, 25).RGBA()
	r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)

	if r8 != 255 || g8 != 0 || b8 != 0 {
		t.Errorf("cropped image color: got (%d,%d,%d), want (255,0,0)", r8, g8, b8)
	}
}

func TestCropDetection(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := CropDetection(img, geometry.Box{10.5, 60.2, 20, 19.3}, 1.0)
	if err != nil {
		t.Fatalf("CropDetection failed: %v", err)
	}

	// Expanded outward to whole pixels: x 10..31, y 60..80.
	if result.X != 10 || result.Y != 60 {
		t.Errorf("origin: got (%d,%d), want (10,60)", result.X, result.Y)
	}
	if result.Width != 21 || result.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 21x20", result.Width, result.Height)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	croppedImg, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}

	// Bottom-left quadrant is blue
	r, g, b, _ := croppedImg.At(5, 5).RGBA()
	if uint8(r>>8) != 0 || uint8(g>>8) != 0 || uint8(b>>8) != 255 {
		t.Errorf("cropped color: got (%d,%d,%d), want (0,0,255)", r>>8, g>>8, b>>8)
	}
}

func TestCropDetection_ClipsToImage(t *testing.T) {
	img := createInMemoryImage(50, 40, color.RGBA{255, 0, 0, 255})

	result, err := CropDetection(img, geometry.Box{-10, 30, 30, 30}, 1.0)
	if err != nil {
		t.Fatalf("CropDetection failed: %v", err)
	}
	if result.X != 0 || result.Y != 30 || result.Width != 20 || result.Height != 10 {
		t.Errorf("clipped region: got (%d,%d) %dx%d, want (0,30) 20x10",
			result.X, result.Y, result.Width, result.Height)
	}
}

func TestCropDetection_OutsideImage(t *testing.T) {
	img := createInMemoryImage(50, 40, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name string
		box  geometry.Box
	}{
		{"right of image", geometry.Box{60, 0, 10, 10}},
		{"below image", geometry.Box{0, 45, 10, 10}},
		{"zero size", geometry.Box{10, 10, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CropDetection(img, tt.box, 1.0); err == nil {
				t.Error("CropDetection should fail for a box outside the image")
			}
		})
	}
}
