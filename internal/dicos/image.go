package dicos

import (
	"encoding/binary"
	"fmt"
	"image"
	"strings"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/detection"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/dicom"
)

// Image is a decoded pixel image.
type Image struct {
	Width  int
	Height int

	// BitsAllocated is the stored sample depth, 8 or 16.
	BitsAllocated int

	// Pixels holds the samples widened to 16 bits. 8-bit samples are
	// replicated into both bytes so 0xFF reads as 0xFFFF.
	Pixels *image.Gray16
}

// ImageOptions carries the values an encoded image needs beyond its pixels.
type ImageOptions struct {
	// ViewIndex is the position of the viewpoint in its container. It
	// selects the SOP instance UID.
	ViewIndex int

	// View is written as the view position.
	View string
}

// DecodeImage reads a single-frame monochrome pixel image.
func DecodeImage(data []byte) (*Image, error) {
	ds, err := dicom.Parse(data, Dictionary)
	if err != nil {
		return nil, detection.NewError(detection.ErrInvalidAnnotationPayload, "", err)
	}

	rows, ok := ds.Uint16(dicom.Root, dicom.Rows)
	if !ok {
		return nil, detection.MissingField("Rows")
	}
	cols, ok := ds.Uint16(dicom.Root, dicom.Columns)
	if !ok {
		return nil, detection.MissingField("Columns")
	}
	raw, ok := ds.Bytes(dicom.Root, dicom.PixelData)
	if !ok {
		return nil, detection.MissingField("PixelData")
	}
	bits := 16
	if v, ok := ds.Uint16(dicom.Root, dicom.BitsAllocated); ok {
		bits = int(v)
	}

	if bits != 8 && bits != 16 {
		return nil, detection.NewError(detection.ErrInvalidAnnotationPayload, "BitsAllocated",
			fmt.Errorf("unsupported depth %d", bits))
	}
	w, h := int(cols), int(rows)
	if len(raw) < w*h*bits/8 {
		return nil, detection.NewError(detection.ErrInvalidAnnotationPayload, "PixelData",
			fmt.Errorf("%d bytes for %dx%d %d-bit pixels", len(raw), w, h, bits))
	}

	img := image.NewGray16(image.Rect(0, 0, w, h))
	if bits == 8 {
		for i := 0; i < w*h; i++ {
			img.Pix[2*i] = raw[i]
			img.Pix[2*i+1] = raw[i]
		}
	} else {
		// Gray16 stores samples big endian.
		for i := 0; i < w*h; i++ {
			v := binary.LittleEndian.Uint16(raw[2*i:])
			binary.BigEndian.PutUint16(img.Pix[2*i:], v)
		}
	}

	return &Image{Width: w, Height: h, BitsAllocated: bits, Pixels: img}, nil
}

// EncodeImage writes a 16-bit monochrome pixel image.
func EncodeImage(img *image.Gray16, opts ImageOptions) ([]byte, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > 0xFFFF || h > 0xFFFF {
		return nil, fmt.Errorf("image %dx%d exceeds the maximum dimensions", w, h)
	}

	ds := dicom.New()
	setCommonAttributes(ds, DigitalXRayImageStorage, ImageInstanceUID(opts.ViewIndex), "DX", opts.ViewIndex+1)

	root := dicom.Root
	if opts.View != "" {
		ds.SetString(root, ViewPosition, dicom.CS, strings.ToUpper(opts.View))
	}
	ds.SetString(root, DetectorType, dicom.CS, placeholderDetector)
	ds.SetString(root, DetectorConfiguration, dicom.CS, placeholderConfig)
	ds.SetUint16(root, dicom.SamplesPerPixel, 1)
	ds.SetString(root, dicom.PhotometricInterpretation, dicom.CS, "MONOCHROME2")
	ds.SetUint16(root, dicom.Rows, uint16(h))
	ds.SetUint16(root, dicom.Columns, uint16(w))
	ds.SetUint16(root, dicom.BitsAllocated, 16)
	ds.SetUint16(root, dicom.BitsStored, 16)
	ds.SetUint16(root, dicom.HighBit, 15)
	ds.SetUint16(root, dicom.PixelRepresentation, 0)

	pix := make([]byte, 2*w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := img.Gray16At(b.Min.X+x, b.Min.Y+y).Y
			binary.LittleEndian.PutUint16(pix[2*(y*w+x):], v)
		}
	}
	ds.Set(root, dicom.PixelData, dicom.OW, pix)

	return dicom.Write(ds)
}
