package container

import (
	"path"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/detection"
)

// dicosExtension marks tag-structured binary entries.
const dicosExtension = ".dcs"

// ClassifyFile decides the annotation format from a pixel layer's file name.
//
// Mapping (case-insensitive):
//   - ".dcs" -> FormatDICOS
//   - ".png", ".jpg", ".jpeg" -> FormatCOCO
//   - anything else -> ErrUnsupportedFileType
func ClassifyFile(name string) (detection.Format, error) {
	if strings.EqualFold(path.Ext(name), dicosExtension) {
		return detection.FormatDICOS, nil
	}

	f, err := imaging.FormatFromFilename(name)
	if err == nil && (f == imaging.PNG || f == imaging.JPEG) {
		return detection.FormatCOCO, nil
	}
	return detection.FormatUnknown, detection.NewError(detection.ErrUnsupportedFileType, name, nil)
}

// PixelExtension returns the file extension a pixel entry of the given
// format is written with.
func PixelExtension(f detection.Format) string {
	if f == detection.FormatDICOS {
		return dicosExtension
	}
	return ".png"
}

// AnnotationExtension returns the file extension an annotation entry of the
// given format is written with.
func AnnotationExtension(f detection.Format) string {
	if f == detection.FormatDICOS {
		return dicosExtension
	}
	return ".json"
}
