package dicos

import (
	"strconv"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/dicom"
)

// The format requires study, series, timing and device attributes that the
// canonical model has no equivalent for. These values fill them
// deterministically so the same input always encodes to the same bytes.
const (
	uidRoot             = "1.2.826.0.1.3680043.10.1064"
	placeholderDate     = "20200101"
	placeholderTime     = "000000"
	placeholderName     = "UNKNOWN"
	placeholderID       = "000000"
	placeholderSerial   = "0000"
	placeholderMaker    = "Threat Scan"
	placeholderSoftware = "threat-scan"
	placeholderDetector = "DIRECT"
	placeholderConfig   = "AREA"
)

// Stable UIDs shared by every object written in one container so reports
// and images reference the same study and series.
var (
	studyInstanceUID    = uidRoot + ".1"
	seriesInstanceUID   = uidRoot + ".2"
	frameOfReferenceUID = uidRoot + ".4"
)

// ImageInstanceUID returns the SOP instance UID written for the pixel image
// of a viewpoint.
func ImageInstanceUID(viewIndex int) string {
	return uidRoot + ".3.1." + strconv.Itoa(viewIndex+1)
}

// ReportInstanceUID returns the SOP instance UID written for a report.
func ReportInstanceUID(index int) string {
	return uidRoot + ".3.2." + strconv.Itoa(index+1)
}

// setCommonAttributes writes the study, series, timing and device
// attributes every object carries.
func setCommonAttributes(ds *dicom.Dataset, sopClass, sopInstance, modality string, instance int) {
	root := dicom.Root
	ds.SetString(root, dicom.SOPClassUID, dicom.UI, sopClass)
	ds.SetString(root, dicom.SOPInstanceUID, dicom.UI, sopInstance)
	ds.SetString(root, StudyDate, dicom.DA, placeholderDate)
	ds.SetString(root, SeriesDate, dicom.DA, placeholderDate)
	ds.SetString(root, ContentDate, dicom.DA, placeholderDate)
	ds.SetString(root, StudyTime, dicom.TM, placeholderTime)
	ds.SetString(root, SeriesTime, dicom.TM, placeholderTime)
	ds.SetString(root, ContentTime, dicom.TM, placeholderTime)
	ds.SetString(root, Modality, dicom.CS, modality)
	ds.SetString(root, Manufacturer, dicom.LO, placeholderMaker)
	ds.SetString(root, ObjectOfInspectionName, dicom.PN, placeholderName)
	ds.SetString(root, ObjectOfInspectionID, dicom.LO, placeholderID)
	ds.SetString(root, DeviceSerialNumber, dicom.LO, placeholderSerial)
	ds.SetString(root, SoftwareVersions, dicom.LO, placeholderSoftware)
	ds.SetString(root, StudyInstanceUID, dicom.UI, studyInstanceUID)
	ds.SetString(root, SeriesInstanceUID, dicom.UI, seriesInstanceUID)
	ds.SetString(root, StudyID, dicom.SH, placeholderID)
	ds.SetString(root, SeriesNumber, dicom.IS, "1")
	ds.SetString(root, InstanceNumber, dicom.IS, strconv.Itoa(instance))
	ds.SetString(root, FrameOfReferenceUID, dicom.UI, frameOfReferenceUID)
}
