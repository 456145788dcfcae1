package dicom

import "fmt"

// Tag is a DICOM attribute tag: group in the high 16 bits, element in the
// low 16 bits.
type Tag uint32

// NewTag builds a tag from its group and element numbers.
func NewTag(group, element uint16) Tag {
	return Tag(uint32(group)<<16 | uint32(element))
}

// Group returns the tag's group number.
func (t Tag) Group() uint16 { return uint16(t >> 16) }

// Element returns the tag's element number.
func (t Tag) Element() uint16 { return uint16(t) }

// String formats the tag as "(gggg,eeee)".
func (t Tag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.Group(), t.Element())
}

// VR is a two-letter DICOM value representation.
type VR string

// Value representations used by this package.
const (
	AE VR = "AE"
	AS VR = "AS"
	CS VR = "CS"
	DA VR = "DA"
	DS VR = "DS"
	DT VR = "DT"
	FD VR = "FD"
	FL VR = "FL"
	IS VR = "IS"
	LO VR = "LO"
	LT VR = "LT"
	OB VR = "OB"
	OD VR = "OD"
	OF VR = "OF"
	OL VR = "OL"
	OV VR = "OV"
	OW VR = "OW"
	PN VR = "PN"
	SH VR = "SH"
	SL VR = "SL"
	SQ VR = "SQ"
	SS VR = "SS"
	ST VR = "ST"
	SV VR = "SV"
	TM VR = "TM"
	UC VR = "UC"
	UI VR = "UI"
	UL VR = "UL"
	UN VR = "UN"
	UR VR = "UR"
	US VR = "US"
	UT VR = "UT"
	UV VR = "UV"
)

// hasLongLength reports whether the VR uses the explicit-VR layout with two
// reserved bytes and a 32-bit length.
func (vr VR) hasLongLength() bool {
	switch vr {
	case OB, OD, OF, OL, OV, OW, SQ, SV, UC, UN, UR, UT, UV:
		return true
	}
	return false
}

// isText reports whether the VR holds character data padded with spaces.
func (vr VR) isText() bool {
	switch vr {
	case AE, AS, CS, DA, DS, DT, IS, LO, LT, PN, SH, ST, TM, UC, UR, UT:
		return true
	}
	return false
}

// valid reports whether vr is a known two-letter representation.
func (vr VR) valid() bool {
	switch vr {
	case AE, AS, CS, DA, DS, DT, FD, FL, IS, LO, LT, OB, OD, OF, OL, OV, OW,
		PN, SH, SL, SQ, SS, ST, SV, TM, UC, UI, UL, UN, UR, US, UT, UV:
		return true
	}
	return false
}

// Delimiter and structural tags.
var (
	ItemTag                 = NewTag(0xFFFE, 0xE000)
	ItemDelimitationTag     = NewTag(0xFFFE, 0xE00D)
	SequenceDelimitationTag = NewTag(0xFFFE, 0xE0DD)
)

// File meta information and common attributes.
var (
	FileMetaInformationGroupLength = NewTag(0x0002, 0x0000)
	FileMetaInformationVersion     = NewTag(0x0002, 0x0001)
	MediaStorageSOPClassUID        = NewTag(0x0002, 0x0002)
	MediaStorageSOPInstanceUID     = NewTag(0x0002, 0x0003)
	TransferSyntaxUID              = NewTag(0x0002, 0x0010)
	ImplementationClassUID         = NewTag(0x0002, 0x0012)
	ImplementationVersionName      = NewTag(0x0002, 0x0013)

	SOPClassUID    = NewTag(0x0008, 0x0016)
	SOPInstanceUID = NewTag(0x0008, 0x0018)

	Rows                      = NewTag(0x0028, 0x0010)
	Columns                   = NewTag(0x0028, 0x0011)
	SamplesPerPixel           = NewTag(0x0028, 0x0002)
	PhotometricInterpretation = NewTag(0x0028, 0x0004)
	BitsAllocated             = NewTag(0x0028, 0x0100)
	BitsStored                = NewTag(0x0028, 0x0101)
	HighBit                   = NewTag(0x0028, 0x0102)
	PixelRepresentation       = NewTag(0x0028, 0x0103)
	PixelData                 = NewTag(0x7FE0, 0x0010)
)

// Transfer syntax UIDs understood by the parser. The writer always emits
// explicit VR little endian.
const (
	ImplicitVRLittleEndian = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian = "1.2.840.10008.1.2.1"
)

// Dictionary maps tags to their value representation. It is consulted when
// parsing implicit-VR data, where the stream carries no VR.
type Dictionary map[Tag]VR

// standardVRs covers the attributes this package itself relies on.
var standardVRs = Dictionary{
	FileMetaInformationGroupLength: UL,
	FileMetaInformationVersion:     OB,
	MediaStorageSOPClassUID:        UI,
	MediaStorageSOPInstanceUID:     UI,
	TransferSyntaxUID:              UI,
	ImplementationClassUID:         UI,
	ImplementationVersionName:      SH,
	SOPClassUID:                    UI,
	SOPInstanceUID:                 UI,
	Rows:                           US,
	Columns:                        US,
	SamplesPerPixel:                US,
	PhotometricInterpretation:      CS,
	BitsAllocated:                  US,
	BitsStored:                     US,
	HighBit:                        US,
	PixelRepresentation:            US,
	PixelData:                      OW,
}

func (d Dictionary) lookup(t Tag) VR {
	if vr, ok := d[t]; ok {
		return vr
	}
	if vr, ok := standardVRs[t]; ok {
		return vr
	}
	if t.Element() == 0x0000 {
		return UL
	}
	return UN
}
