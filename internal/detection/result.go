package detection

// PixelPayload is the pixel data of one viewpoint, kept in its source
// encoding.
type PixelPayload struct {
	// View is the viewpoint name, e.g. "top" or "side".
	View string `json:"view"`

	// ImageID identifies the image within its container. Generated at decode
	// time when the source format has no stable id.
	ImageID string `json:"imageId"`

	// Format is the encoding of Data: FormatDICOS for .dcs images,
	// FormatCOCO for PNG/JPEG rasters.
	Format Format `json:"format"`

	// FileName is the entry name the payload was read from.
	FileName string `json:"fileName"`

	// Data holds the raw entry bytes.
	Data []byte `json:"pixelData,omitempty"`

	// Width and Height are the image dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Algorithm describes the detector that produced a set of detections.
type Algorithm struct {
	Name                  string `json:"algorithm"`
	DetectorType          string `json:"type,omitempty"`
	DetectorConfiguration string `json:"configuration,omitempty"`
	SeriesDescription     string `json:"seriesDescription,omitempty"`
	StudyDescription      string `json:"studyDescription,omitempty"`
}

// Result is everything decoded from one container.
type Result struct {
	// Format is the resolved annotation format of the container.
	Format Format `json:"format"`

	// DetectionData lists detections in manifest order.
	DetectionData []Detection `json:"detectionData"`

	// ImageData lists one pixel payload per viewpoint, in manifest order.
	ImageData []PixelPayload `json:"imageData"`

	// Algorithms maps algorithm name to its metadata. Omitted when the
	// format carries none.
	Algorithms map[string]Algorithm `json:"algorithms,omitempty"`
}

// DetectionsForView returns the detections that belong to view.
func (r *Result) DetectionsForView(view string) []Detection {
	var out []Detection
	for _, d := range r.DetectionData {
		if d.View == view {
			out = append(out, d)
		}
	}
	return out
}

// DedupAlgorithms reduces per-branch algorithm records into one map keyed by
// name. The first record seen for a name wins; nil records and records with
// an empty name are skipped. Returns nil when nothing remains.
func DedupAlgorithms(records []*Algorithm) map[string]Algorithm {
	var out map[string]Algorithm
	for _, rec := range records {
		if rec == nil || rec.Name == "" {
			continue
		}
		if out == nil {
			out = make(map[string]Algorithm)
		}
		if _, seen := out[rec.Name]; !seen {
			out[rec.Name] = *rec
		}
	}
	return out
}
