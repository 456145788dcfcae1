package coco

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/detection"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/geometry"
)

// CategoryID is the category every annotation is written under.
const CategoryID = 55

// Document is an annotation file: one image and the annotations on it.
type Document struct {
	Info        Info         `json:"info"`
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
	Categories  []Category   `json:"categories"`
}

// Info describes the producer of a document.
type Info struct {
	Description string `json:"description"`
	Version     string `json:"version"`
	Contributor string `json:"contributor,omitempty"`
}

// Image describes the pixel entry a document annotates.
type Image struct {
	ID       ID     `json:"id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileName string `json:"file_name"`
}

// Category names a category id.
type Category struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	SuperCategory string `json:"supercategory,omitempty"`
}

// Annotation is one annotation record as it appears on the wire.
//
// BBox holds two corners, [x1, y1, x2, y2]. Segmentation holds zero or one
// flattened polygon ring.
type Annotation struct {
	ID           int         `json:"id"`
	ImageID      ID          `json:"image_id"`
	IsCrowd      int         `json:"iscrowd"`
	BBox         [4]float64  `json:"bbox"`
	Area         float64     `json:"area"`
	CategoryID   int         `json:"category_id"`
	Segmentation [][]float64 `json:"segmentation"`
	ClassName    string      `json:"className"`
	Confidence   float64     `json:"confidence"`

	// Algorithm is carried by the document info rather than the record.
	Algorithm string `json:"-"`
}

// ID is an image or annotation id. Producers write it as a number or a
// string; it is kept as text and written back as a number when it is one.
type ID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes integer ids as numbers and anything else as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// rawAnnotation mirrors Annotation with every required field optional so
// that absent fields can be told apart from zero values.
type rawAnnotation struct {
	ID           int             `json:"id"`
	ImageID      *ID             `json:"image_id"`
	BBox         []float64       `json:"bbox"`
	Segmentation json.RawMessage `json:"segmentation"`
	ClassName    *string         `json:"className"`
	Confidence   *float64        `json:"confidence"`
}

type rawDocument struct {
	Info        Info            `json:"info"`
	Annotations []rawAnnotation `json:"annotations"`
}

func invalid(field string, cause error) error {
	return detection.NewError(detection.ErrInvalidAnnotationPayload, field, cause)
}

// Parse reads the first annotation of a document. Every required field must
// be present; the first one missing is named in the returned
// detection.ErrInvalidAnnotationPayload error.
func Parse(data []byte) (*Annotation, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, invalid("", err)
	}
	if len(doc.Annotations) == 0 {
		return nil, invalid("annotations", nil)
	}
	raw := doc.Annotations[0]

	switch {
	case raw.ClassName == nil:
		return nil, invalid("className", nil)
	case len(raw.BBox) != 4:
		return nil, invalid("bbox", nil)
	case raw.Confidence == nil:
		return nil, invalid("confidence", nil)
	case raw.ImageID == nil:
		return nil, invalid("image_id", nil)
	}

	a := &Annotation{
		ID:         raw.ID,
		ImageID:    *raw.ImageID,
		ClassName:  *raw.ClassName,
		Confidence: *raw.Confidence,
		CategoryID: CategoryID,
		Algorithm:  doc.Info.Contributor,
	}
	copy(a.BBox[:], raw.BBox)

	if seg := bytes.TrimSpace(raw.Segmentation); len(seg) > 0 && !bytes.Equal(seg, []byte("null")) {
		if err := json.Unmarshal(seg, &a.Segmentation); err != nil {
			return nil, invalid("segmentation", err)
		}
	}
	return a, nil
}

// Decode reads the first annotation of a document as a canonical detection
// owned by view.
func Decode(data []byte, view string) (detection.Detection, error) {
	a, err := Parse(data)
	if err != nil {
		return detection.Detection{}, err
	}
	return a.Detection(view)
}

// Detection converts the annotation to the canonical model.
//
// A non-empty segmentation ring becomes the polygon mask, anchored to the
// box, and is rasterized into the binary mask. Without one, the binary mask
// is synthesized from the box with an empty bitmap. A ring whose extent
// geometry.MaskFits rejects fails with ErrInvalidAnnotationPayload.
func (a *Annotation) Detection(view string) (detection.Detection, error) {
	box := geometry.CocoBoxToBoundingBox(a.BBox)
	d := detection.Detection{
		Algorithm:         a.Algorithm,
		ClassName:         a.ClassName,
		Confidence:        percentage(a.Confidence),
		View:              view,
		BoundingBox:       box,
		UUID:              detection.NewUUID(),
		DetectionFromFile: true,
		ImageID:           string(a.ImageID),
	}

	if len(a.Segmentation) > 0 && len(a.Segmentation[0]) >= 2 {
		d.PolygonMask = geometry.CoordinatesToPolygonData(a.Segmentation[0], &box)
		d.BinaryMask = geometry.PolygonToBinaryMask(geometry.Vertices(d.PolygonMask))
		if d.BinaryMask == nil {
			return detection.Detection{}, invalid("segmentation",
				fmt.Errorf("ring exceeds %d mask pixels", geometry.MaxMaskPixels))
		}
	} else {
		d.BinaryMask = geometry.BoxToBinaryMask(box)
	}
	return d, nil
}

// percentage reads a confidence written either as a whole percentage or as
// a fraction below one.
func percentage(v float64) int {
	if v < 1 && v != math.Trunc(v) {
		return detection.DecimalToPercentage(v)
	}
	p := int(math.Floor(v))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// EncodeOptions carries the container-level values of one annotation file.
type EncodeOptions struct {
	// ID is the annotation id, 1-based across the container.
	ID int

	// ImageID identifies the image within the container.
	ImageID string

	// FileName is the pixel entry the annotation refers to.
	FileName string

	Width  int
	Height int
}

// FromDetection builds the wire annotation of a canonical detection. The
// polygon mask, when present, is re-resolved against the box so that it
// follows box edits.
func FromDetection(d detection.Detection, id int, imageID string) Annotation {
	box := d.BoundingBox
	a := Annotation{
		ID:           id,
		ImageID:      ID(imageID),
		BBox:         geometry.BoundingBoxToCorners(box),
		Area:         box.Area(),
		CategoryID:   CategoryID,
		Segmentation: [][]float64{},
		ClassName:    d.ClassName,
		Confidence:   float64(d.Confidence),
	}
	if len(d.PolygonMask) > 0 {
		a.Segmentation = [][]float64{geometry.PolygonDataToXYArray(d.PolygonMask, &box)}
	}
	return a
}

// Encode writes one detection as an annotation document.
func Encode(d detection.Detection, opts EncodeOptions) ([]byte, error) {
	doc := Document{
		Info: Info{
			Description: "Threat detection annotations",
			Version:     "1.0",
			Contributor: d.Algorithm,
		},
		Images: []Image{{
			ID:       ID(opts.ImageID),
			Width:    opts.Width,
			Height:   opts.Height,
			FileName: opts.FileName,
		}},
		Annotations: []Annotation{FromDetection(d, opts.ID, opts.ImageID)},
		Categories: []Category{{
			ID:            CategoryID,
			Name:          d.ClassName,
			SuperCategory: "threat",
		}},
	}
	return json.Marshal(doc)
}
