package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
)

// RasterInfo describes a raster pixel payload without its pixels.
type RasterInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the registered decoder name: "png" or "jpeg".
	Format string `json:"format"`
}

// DecodeRaster decodes PNG or JPEG bytes into an image.
//
// EXIF orientation is ignored: pixel coordinates in annotations refer to
// the stored raster, not to its displayed orientation.
func DecodeRaster(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// ReadRasterInfo reads the dimensions and format of a raster from its
// header only.
func ReadRasterInfo(data []byte) (*RasterInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	return &RasterInfo{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// EncodePNG encodes an image as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
