package dicos

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/detection"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/dicom"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/geometry"
)

// Threat is one potential threat object as laid out in a report, before
// conversion to the canonical model.
type Threat struct {
	ID          uint32
	ClassName   string
	Probability float64

	// Polygon is the bounding polygon: two corners with a z component each.
	Polygon [6]float64

	// ROI is the voxel region of interest. Nil when the report has none.
	ROI *ROI
}

// ROI is a threat region of interest with its bitmap flattened row-major.
type ROI struct {
	Base    [3]float64
	Extents [3]float64
	Bitmap  []byte
}

// ReportOptions carries the values an encoded report needs beyond the
// detection itself.
type ReportOptions struct {
	// Index is the position of the report in its container. It selects
	// the SOP instance UID and the instance number.
	Index int

	// ImageInstanceUID references the pixel image the report annotates.
	// Empty omits the reference.
	ImageInstanceUID string

	// Algorithm supplies detector metadata. The algorithm name written is
	// the detection's own.
	Algorithm *detection.Algorithm
}

// DecodeReport parses a threat detection report into canonical detections
// tagged with view, plus the algorithm record found at the top level.
//
// A report without a threat sequence yields no detections. The first
// required attribute missing from a threat fails the whole report with
// detection.ErrMissingDetectionField naming the attribute.
func DecodeReport(data []byte, view string) ([]detection.Detection, *detection.Algorithm, error) {
	ds, err := dicom.Parse(data, Dictionary)
	if err != nil {
		return nil, nil, detection.NewError(detection.ErrInvalidAnnotationPayload, "", err)
	}

	alg := readAlgorithm(ds)

	threats, ok := ds.Items(dicom.Root, ThreatSequence)
	if !ok {
		return nil, alg, nil
	}

	out := make([]detection.Detection, 0, len(threats))
	for _, it := range threats {
		threat, err := readThreat(ds, it)
		if err != nil {
			return nil, nil, err
		}
		d, err := threat.Detection(view, alg.Name)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, d)
	}
	return out, alg, nil
}

func readAlgorithm(ds *dicom.Dataset) *detection.Algorithm {
	str := func(t dicom.Tag) string {
		s, _ := ds.String(dicom.Root, t)
		return s
	}
	return &detection.Algorithm{
		Name:                  str(ThreatDetectionAlgorithmAndVersion),
		DetectorType:          str(DetectorType),
		DetectorConfiguration: str(DetectorConfiguration),
		SeriesDescription:     str(SeriesDescription),
		StudyDescription:      str(StudyDescription),
	}
}

// firstItem returns the first item of a required sequence.
func firstItem(ds *dicom.Dataset, it dicom.ItemID, tag dicom.Tag, field string) (dicom.ItemID, error) {
	items, ok := ds.Items(it, tag)
	if !ok || len(items) == 0 {
		return 0, detection.MissingField(field)
	}
	return items[0], nil
}

// floats returns a required numeric attribute with at least n values.
func floats(ds *dicom.Dataset, it dicom.ItemID, tag dicom.Tag, field string, n int) ([]float64, error) {
	v, ok := ds.Floats(it, tag)
	if !ok || len(v) < n {
		return nil, detection.MissingField(field)
	}
	return v, nil
}

func readThreat(ds *dicom.Dataset, it dicom.ItemID) (*Threat, error) {
	var t Threat
	if id, ok := ds.Uint32(it, PotentialThreatObjectID); ok {
		t.ID = id
	}

	pto, err := firstItem(ds, it, PTORepresentationSequence, "PTORepresentationSequence")
	if err != nil {
		return nil, err
	}
	poly, err := floats(ds, pto, BoundingPolygon, "BoundingPolygon", 6)
	if err != nil {
		return nil, err
	}
	copy(t.Polygon[:], poly)

	if voxels, ok := ds.Items(pto, ThreatROIVoxelSequence); ok && len(voxels) > 0 {
		roi, err := readROI(ds, voxels[0])
		if err != nil {
			return nil, err
		}
		t.ROI = roi
	}

	assessment, err := firstItem(ds, it, ATDAssessmentSequence, "ATDAssessmentSequence")
	if err != nil {
		return nil, err
	}
	class, ok := ds.String(assessment, ThreatCategoryDescription)
	if !ok {
		return nil, detection.MissingField("ThreatCategoryDescription")
	}
	t.ClassName = class
	prob, err := floats(ds, assessment, ATDAssessmentProbability, "ATDAssessmentProbability", 1)
	if err != nil {
		return nil, err
	}
	t.Probability = prob[0]
	return &t, nil
}

// flPercentage converts an FL probability to a percentage. The float32 is
// read as its shortest decimal and scaled exactly, so 0.29 stored as FL
// yields 29 rather than floor(28.99999...).
func flPercentage(v float64) int {
	if math.IsNaN(v) || v <= 0 || v >= 1 {
		return detection.DecimalToPercentage(v)
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'f', -1, 32))
	if !ok {
		return detection.DecimalToPercentage(v)
	}
	r.Mul(r, big.NewRat(100, 1))
	return int(new(big.Int).Div(r.Num(), r.Denom()).Int64())
}

func readROI(ds *dicom.Dataset, it dicom.ItemID) (*ROI, error) {
	var roi ROI
	base, err := floats(ds, it, ThreatROIBase, "ThreatROIBase", 2)
	if err != nil {
		return nil, err
	}
	extents, err := floats(ds, it, ThreatROIExtents, "ThreatROIExtents", 2)
	if err != nil {
		return nil, err
	}
	bitmap, ok := ds.Bytes(it, ThreatROIBitmap)
	if !ok {
		return nil, detection.MissingField("ThreatROIBitmap")
	}
	copy(roi.Base[:], base)
	copy(roi.Extents[:], extents)
	roi.Bitmap = bitmap
	return &roi, nil
}

// Box returns the canonical bounding box of the threat polygon.
func (t *Threat) Box() geometry.Box {
	return geometry.CocoBoxToBoundingBox([4]float64{t.Polygon[0], t.Polygon[1], t.Polygon[3], t.Polygon[4]})
}

// Mask returns the ROI as a binary mask. Without an ROI the mask is
// filled from the bounding box. Either way the extent must satisfy
// geometry.MaskFits.
func (t *Threat) Mask() (*geometry.BinaryMask, error) {
	if t.ROI == nil {
		m := geometry.BoxToFilledMask(t.Box())
		if m == nil {
			return nil, detection.NewError(detection.ErrInvalidAnnotationPayload, "BoundingPolygon",
				fmt.Errorf("box %v exceeds %d mask pixels", t.Box(), geometry.MaxMaskPixels))
		}
		return m, nil
	}

	w, h, err := roiExtent(t.ROI.Extents)
	if err != nil {
		return nil, err
	}
	bitmap, err := unpackBitmap(t.ROI.Bitmap, w*h)
	if err != nil {
		return nil, err
	}
	return &geometry.BinaryMask{
		Bitmap: bitmap,
		Origin: [2]int{int(math.Floor(t.ROI.Base[0])), int(math.Floor(t.ROI.Base[1]))},
		Extent: [2]int{w, h},
	}, nil
}

// roiExtent floors the ROI width and height. Negative or non-finite values
// and extents geometry.MaskFits refuses are ErrInvalidAnnotationPayload.
func roiExtent(extents [3]float64) (w, h int, err error) {
	for _, v := range extents[:2] {
		if math.IsNaN(v) || v < 0 || v > geometry.MaxMaskPixels {
			return 0, 0, detection.NewError(detection.ErrInvalidAnnotationPayload, "ThreatROIExtents",
				fmt.Errorf("extent %v out of range", v))
		}
	}
	w, h = int(math.Floor(extents[0])), int(math.Floor(extents[1]))
	if !geometry.MaskFits([2]int{w, h}) {
		return 0, 0, detection.NewError(detection.ErrInvalidAnnotationPayload, "ThreatROIExtents",
			fmt.Errorf("%dx%d exceeds %d mask pixels", w, h, geometry.MaxMaskPixels))
	}
	return w, h, nil
}

// unpackBitmap normalizes a stored bitmap to one 0/1 byte per pixel.
// Bitmaps are written one byte per pixel, but bit-packed bitmaps (least
// significant bit first) are accepted too. Either form may carry one byte
// of padding.
func unpackBitmap(raw []byte, pixels int) ([]uint8, error) {
	packed := (pixels + 7) / 8
	switch {
	case pixels < 0:
		return nil, detection.NewError(detection.ErrInvalidAnnotationPayload, "ThreatROIBitmap", nil)
	case len(raw) == pixels || len(raw) == pixels+1:
		out := make([]uint8, pixels)
		for i := range out {
			if raw[i] != 0 {
				out[i] = 1
			}
		}
		return out, nil
	case len(raw) == packed || len(raw) == packed+1:
		out := make([]uint8, pixels)
		for i := range out {
			out[i] = (raw[i/8] >> (i % 8)) & 1
		}
		return out, nil
	default:
		return nil, detection.NewError(detection.ErrInvalidAnnotationPayload, "ThreatROIBitmap", nil)
	}
}

// Detection converts the threat to the canonical model.
func (t *Threat) Detection(view, algorithm string) (detection.Detection, error) {
	mask, err := t.Mask()
	if err != nil {
		return detection.Detection{}, err
	}
	return detection.Detection{
		Algorithm:         algorithm,
		ClassName:         t.ClassName,
		Confidence:        flPercentage(t.Probability),
		View:              view,
		BoundingBox:       t.Box(),
		BinaryMask:        mask,
		UUID:              detection.NewUUID(),
		DetectionFromFile: true,
	}, nil
}

// ThreatFromDetection builds the report layout of a canonical detection.
// A rasterized binary mask becomes the ROI; otherwise a polygon mask is
// rasterized into one; otherwise the ROI is left out.
func ThreatFromDetection(d detection.Detection, id uint32) *Threat {
	corners := geometry.BoundingBoxToCorners(d.BoundingBox)
	t := &Threat{
		ID:          id,
		ClassName:   d.ClassName,
		Probability: detection.PercentageToDecimal(d.Confidence),
		Polygon:     [6]float64{corners[0], corners[1], 0, corners[2], corners[3], 0},
	}

	mask := d.BinaryMask
	if !mask.IsRasterized() && len(d.PolygonMask) > 0 {
		mask = geometry.PolygonToBinaryMask(geometry.Vertices(d.PolygonMask))
	}
	if mask.IsRasterized() {
		t.ROI = &ROI{
			Base:    [3]float64{float64(mask.Origin[0]), float64(mask.Origin[1]), 0},
			Extents: [3]float64{float64(mask.Extent[0]), float64(mask.Extent[1]), 1},
			Bitmap:  append([]byte(nil), mask.Bitmap...),
		}
	}
	return t
}

// EncodeReport writes one detection as a threat detection report.
func EncodeReport(d detection.Detection, opts ReportOptions) ([]byte, error) {
	ds := dicom.New()
	setCommonAttributes(ds, ThreatDetectionReportStorage, ReportInstanceUID(opts.Index), "TDR", opts.Index+1)

	root := dicom.Root
	ds.SetString(root, TDRType, dicom.CS, "MACHINE")
	ds.SetString(root, ThreatDetectionAlgorithmAndVersion, dicom.LO, d.Algorithm)
	ds.SetString(root, AlarmDecision, dicom.CS, "ALARM")
	ds.SetUint16(root, NumberOfTotalObjects, 1)
	ds.SetUint16(root, NumberOfAlarmObjects, 1)

	detectorType, detectorConfig := placeholderDetector, placeholderConfig
	if a := opts.Algorithm; a != nil {
		if a.DetectorType != "" {
			detectorType = a.DetectorType
		}
		if a.DetectorConfiguration != "" {
			detectorConfig = a.DetectorConfiguration
		}
		if a.SeriesDescription != "" {
			ds.SetString(root, SeriesDescription, dicom.LO, a.SeriesDescription)
		}
		if a.StudyDescription != "" {
			ds.SetString(root, StudyDescription, dicom.LO, a.StudyDescription)
		}
	}
	ds.SetString(root, DetectorType, dicom.CS, detectorType)
	ds.SetString(root, DetectorConfiguration, dicom.CS, detectorConfig)

	writeThreat(ds, ThreatFromDetection(d, 0), opts.ImageInstanceUID)
	return dicom.Write(ds)
}

func writeThreat(ds *dicom.Dataset, t *Threat, imageUID string) {
	it := ds.AddItem(dicom.Root, ThreatSequence)
	ds.SetUint32(it, PotentialThreatObjectID, t.ID)

	assessment := ds.AddItem(it, ATDAssessmentSequence)
	ds.SetString(assessment, ThreatCategory, dicom.CS, "ANOMALY")
	ds.SetString(assessment, ThreatCategoryDescription, dicom.LT, t.ClassName)
	ds.SetString(assessment, ATDAbilityAssessment, dicom.CS, "NO_INTERFERENCE")
	ds.SetString(assessment, ATDAssessmentFlag, dicom.CS, "THREAT")
	ds.SetFloats(assessment, ATDAssessmentProbability, dicom.FL, []float64{t.Probability})

	pto := ds.AddItem(it, PTORepresentationSequence)
	ds.SetFloats(pto, BoundingPolygon, dicom.FL, t.Polygon[:])
	if imageUID != "" {
		ref := ds.AddItem(pto, ReferencedInstanceSequence)
		ds.SetString(ref, ReferencedSOPClassUID, dicom.UI, DigitalXRayImageStorage)
		ds.SetString(ref, ReferencedSOPInstanceUID, dicom.UI, imageUID)
	}
	if t.ROI != nil {
		voxel := ds.AddItem(pto, ThreatROIVoxelSequence)
		ds.SetFloats(voxel, ThreatROIBase, dicom.FL, t.ROI.Base[:])
		ds.SetFloats(voxel, ThreatROIExtents, dicom.FL, t.ROI.Extents[:])
		ds.Set(voxel, ThreatROIBitmap, dicom.OB, t.ROI.Bitmap)
	}
}
