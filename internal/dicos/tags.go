package dicos

import "github.com/irconde/ml-automated-threat-scanner-sub000/internal/dicom"

// Threat detection report attributes.
//
// The detection fields sit at fixed positions in the item tree:
//
//	ThreatSequence[]                          one item per potential threat object
//	  PotentialThreatObjectID
//	  PTORepresentationSequence[0]
//	    BoundingPolygon                       x0 y0 z0 x1 y1 z1
//	    ReferencedInstanceSequence[0]
//	    ThreatROIVoxelSequence[0]             optional
//	      ThreatROIBase                       x y z
//	      ThreatROIExtents                    w h d
//	      ThreatROIBitmap                     one byte per pixel, row-major
//	  ATDAssessmentSequence[0]
//	    ThreatCategory
//	    ThreatCategoryDescription             class name
//	    ATDAbilityAssessment
//	    ATDAssessmentFlag
//	    ATDAssessmentProbability              0-1
//
// Algorithm metadata lives at the top level of the report.
var (
	ThreatROIVoxelSequence             = dicom.NewTag(0x4010, 0x1001)
	ThreatROIBase                      = dicom.NewTag(0x4010, 0x1004)
	ThreatROIExtents                   = dicom.NewTag(0x4010, 0x1005)
	ThreatROIBitmap                    = dicom.NewTag(0x4010, 0x1006)
	PotentialThreatObjectID            = dicom.NewTag(0x4010, 0x1010)
	ThreatSequence                     = dicom.NewTag(0x4010, 0x1011)
	ThreatCategory                     = dicom.NewTag(0x4010, 0x1012)
	ThreatCategoryDescription          = dicom.NewTag(0x4010, 0x1013)
	ATDAbilityAssessment               = dicom.NewTag(0x4010, 0x1014)
	ATDAssessmentFlag                  = dicom.NewTag(0x4010, 0x1015)
	ATDAssessmentProbability           = dicom.NewTag(0x4010, 0x1016)
	BoundingPolygon                    = dicom.NewTag(0x4010, 0x101A)
	TDRType                            = dicom.NewTag(0x4010, 0x1027)
	ThreatDetectionAlgorithmAndVersion = dicom.NewTag(0x4010, 0x1029)
	AlarmDecision                      = dicom.NewTag(0x4010, 0x1031)
	NumberOfTotalObjects               = dicom.NewTag(0x4010, 0x1033)
	NumberOfAlarmObjects               = dicom.NewTag(0x4010, 0x1034)
	PTORepresentationSequence          = dicom.NewTag(0x4010, 0x1037)
	ATDAssessmentSequence              = dicom.NewTag(0x4010, 0x1038)
)

// General attributes written as placeholders or read as algorithm metadata.
var (
	StudyDate                  = dicom.NewTag(0x0008, 0x0020)
	SeriesDate                 = dicom.NewTag(0x0008, 0x0021)
	ContentDate                = dicom.NewTag(0x0008, 0x0023)
	StudyTime                  = dicom.NewTag(0x0008, 0x0030)
	SeriesTime                 = dicom.NewTag(0x0008, 0x0031)
	ContentTime                = dicom.NewTag(0x0008, 0x0033)
	Modality                   = dicom.NewTag(0x0008, 0x0060)
	Manufacturer               = dicom.NewTag(0x0008, 0x0070)
	StudyDescription           = dicom.NewTag(0x0008, 0x1030)
	SeriesDescription          = dicom.NewTag(0x0008, 0x103E)
	ReferencedInstanceSequence = dicom.NewTag(0x0008, 0x114A)
	ReferencedSOPClassUID      = dicom.NewTag(0x0008, 0x1150)
	ReferencedSOPInstanceUID   = dicom.NewTag(0x0008, 0x1155)
	ObjectOfInspectionName     = dicom.NewTag(0x0010, 0x0010)
	ObjectOfInspectionID       = dicom.NewTag(0x0010, 0x0020)
	DeviceSerialNumber         = dicom.NewTag(0x0018, 0x1000)
	SoftwareVersions           = dicom.NewTag(0x0018, 0x1020)
	ViewPosition               = dicom.NewTag(0x0018, 0x5101)
	DetectorType               = dicom.NewTag(0x0018, 0x7004)
	DetectorConfiguration      = dicom.NewTag(0x0018, 0x7005)
	StudyInstanceUID           = dicom.NewTag(0x0020, 0x000D)
	SeriesInstanceUID          = dicom.NewTag(0x0020, 0x000E)
	StudyID                    = dicom.NewTag(0x0020, 0x0010)
	SeriesNumber               = dicom.NewTag(0x0020, 0x0011)
	InstanceNumber             = dicom.NewTag(0x0020, 0x0013)
	FrameOfReferenceUID        = dicom.NewTag(0x0020, 0x0052)
)

// SOP classes.
const (
	ThreatDetectionReportStorage = "1.2.840.10008.5.1.4.1.1.501.3"
	DigitalXRayImageStorage      = "1.2.840.10008.5.1.4.1.1.501.2.1"
)

// Dictionary supplies VRs for implicit-VR reports.
var Dictionary = dicom.Dictionary{
	ThreatROIVoxelSequence:             dicom.SQ,
	ThreatROIBase:                      dicom.FL,
	ThreatROIExtents:                   dicom.FL,
	ThreatROIBitmap:                    dicom.OB,
	PotentialThreatObjectID:            dicom.UL,
	ThreatSequence:                     dicom.SQ,
	ThreatCategory:                     dicom.CS,
	ThreatCategoryDescription:          dicom.LT,
	ATDAbilityAssessment:               dicom.CS,
	ATDAssessmentFlag:                  dicom.CS,
	ATDAssessmentProbability:           dicom.FL,
	BoundingPolygon:                    dicom.FL,
	TDRType:                            dicom.CS,
	ThreatDetectionAlgorithmAndVersion: dicom.LO,
	AlarmDecision:                      dicom.CS,
	NumberOfTotalObjects:               dicom.US,
	NumberOfAlarmObjects:               dicom.US,
	PTORepresentationSequence:          dicom.SQ,
	ATDAssessmentSequence:              dicom.SQ,
	StudyDate:                          dicom.DA,
	SeriesDate:                         dicom.DA,
	ContentDate:                        dicom.DA,
	StudyTime:                          dicom.TM,
	SeriesTime:                         dicom.TM,
	ContentTime:                        dicom.TM,
	Modality:                           dicom.CS,
	Manufacturer:                       dicom.LO,
	StudyDescription:                   dicom.LO,
	SeriesDescription:                  dicom.LO,
	ReferencedInstanceSequence:         dicom.SQ,
	ReferencedSOPClassUID:              dicom.UI,
	ReferencedSOPInstanceUID:           dicom.UI,
	ObjectOfInspectionName:             dicom.PN,
	ObjectOfInspectionID:               dicom.LO,
	DeviceSerialNumber:                 dicom.LO,
	SoftwareVersions:                   dicom.LO,
	ViewPosition:                       dicom.CS,
	DetectorType:                       dicom.CS,
	DetectorConfiguration:              dicom.CS,
	StudyInstanceUID:                   dicom.UI,
	SeriesInstanceUID:                  dicom.UI,
	StudyID:                            dicom.SH,
	SeriesNumber:                       dicom.IS,
	InstanceNumber:                     dicom.IS,
	FrameOfReferenceUID:                dicom.UI,
}
