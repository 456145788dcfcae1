package detection

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/geometry"
)

// Format identifies an annotation wire format.
type Format string

const (
	// FormatUnknown means the format has not been resolved yet.
	FormatUnknown Format = ""

	// FormatDICOS is the tag-structured binary format (DICOS threat detection
	// reports with .dcs pixel images).
	FormatDICOS Format = "DICOS"

	// FormatCOCO is the JSON annotation format with raster pixel images.
	FormatCOCO Format = "COCO"
)

// ParseFormat resolves a user or manifest supplied format name. Matching is
// case-insensitive and accepts common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dicos", "dcs":
		return FormatDICOS, nil
	case "coco", "ora", "json", "png", "jpg", "jpeg":
		return FormatCOCO, nil
	default:
		return FormatUnknown, NewError(ErrUnsupportedFileType, s, nil)
	}
}

// Detection is the canonical record of one detected object, independent of
// the wire format it was read from.
type Detection struct {
	// Algorithm is the producing algorithm name. May be empty.
	Algorithm string `json:"algorithm"`

	// ClassName is the category label, e.g. "knife".
	ClassName string `json:"className"`

	// Confidence is an integer percentage, 0 to 100.
	Confidence int `json:"confidence"`

	// View is the owning viewpoint name, e.g. "top".
	View string `json:"view"`

	// BoundingBox is [x, y, width, height] in image pixels.
	BoundingBox geometry.Box `json:"boundingBox"`

	// BinaryMask is the rasterized mask, if any.
	BinaryMask *geometry.BinaryMask `json:"binaryMask,omitempty"`

	// PolygonMask is the vector outline, present only when the source
	// format carries one.
	PolygonMask []geometry.PolygonPoint `json:"polygonMask,omitempty"`

	// UUID is generated at decode time and never written to the wire.
	UUID string `json:"uuid"`

	// DetectionFromFile is true for every decoded detection.
	DetectionFromFile bool `json:"detectionFromFile"`

	// ImageID is the source image id for JSON-native detections.
	ImageID string `json:"imageId,omitempty"`
}

// NewUUID returns a fresh random identifier for a detection or image.
func NewUUID() string {
	return uuid.NewString()
}

// HasMask reports whether the detection carries a binary or polygon mask.
func (d *Detection) HasMask() bool {
	return d.BinaryMask != nil || len(d.PolygonMask) > 0
}

// Validate checks the canonical invariants: a confidence percentage, a
// non-negative box size, and at least one mask.
func (d *Detection) Validate() error {
	if d.Confidence < 0 || d.Confidence > 100 {
		return fmt.Errorf("confidence %d outside 0-100", d.Confidence)
	}
	if d.BoundingBox.Width() < 0 || d.BoundingBox.Height() < 0 {
		return fmt.Errorf("bounding box %v has negative size", d.BoundingBox)
	}
	if !d.HasMask() {
		return fmt.Errorf("detection %q has neither a binary nor a polygon mask", d.ClassName)
	}
	if d.BinaryMask != nil {
		if err := d.BinaryMask.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DecimalToPercentage converts a 0-1 probability into an integer
// percentage, rounding down: 0.8275 becomes 82.
func DecimalToPercentage(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 1:
		return 100
	}
	return int(math.Floor(v * 100))
}

// PercentageToDecimal converts an integer percentage back to 0-1.
func PercentageToDecimal(p int) float64 {
	return float64(p) / 100
}
