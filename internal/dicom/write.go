package dicom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

// ImplementationUID identifies this writer in the file meta information.
const ImplementationUID = "1.2.826.0.1.3680043.10.1064.1"

// Write serializes the dataset as a DICOM Part 10 file in explicit VR little
// endian.
//
// The output starts with a zeroed 128-byte preamble and "DICM", followed by
// the file meta group with a correct (0002,0000) group length. Meta
// attributes that are missing are filled in: version, transfer syntax,
// implementation UID, and the media storage SOP class/instance copied from
// (0008,0016)/(0008,0018). The body follows with attributes in ascending tag
// order, values padded to even length, and sequences and items written with
// defined lengths.
func Write(ds *Dataset) ([]byte, error) {
	var meta, body []Element
	for _, idx := range ds.items[Root].order {
		el := ds.elements[idx]
		switch {
		case el.Tag == FileMetaInformationGroupLength:
		case el.Tag.Group() == 0x0002:
			meta = append(meta, el)
		default:
			body = append(body, el)
		}
	}
	meta = completeMeta(ds, meta)

	var metaBuf bytes.Buffer
	if err := writeElements(&metaBuf, ds, meta); err != nil {
		return nil, fmt.Errorf("file meta information: %w", err)
	}

	var out bytes.Buffer
	out.Write(make([]byte, preambleLength))
	out.WriteString(magic)

	groupLength := make([]byte, 4)
	binary.LittleEndian.PutUint32(groupLength, uint32(metaBuf.Len()))
	if err := writeElement(&out, ds, Element{Tag: FileMetaInformationGroupLength, VR: UL, Value: groupLength}); err != nil {
		return nil, err
	}
	out.Write(metaBuf.Bytes())

	if err := writeElements(&out, ds, body); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func completeMeta(ds *Dataset, meta []Element) []Element {
	have := make(map[Tag]bool, len(meta))
	for i, el := range meta {
		have[el.Tag] = true
		if el.Tag == TransferSyntaxUID {
			meta[i].Value = []byte(ExplicitVRLittleEndian)
		}
	}

	add := func(t Tag, vr VR, value []byte) {
		if !have[t] && value != nil {
			meta = append(meta, Element{Tag: t, VR: vr, Value: value})
		}
	}
	add(FileMetaInformationVersion, OB, []byte{0x00, 0x01})
	if v, ok := ds.Bytes(Root, SOPClassUID); ok {
		add(MediaStorageSOPClassUID, UI, v)
	}
	if v, ok := ds.Bytes(Root, SOPInstanceUID); ok {
		add(MediaStorageSOPInstanceUID, UI, v)
	}
	add(TransferSyntaxUID, UI, []byte(ExplicitVRLittleEndian))
	add(ImplementationClassUID, UI, []byte(ImplementationUID))
	return meta
}

func writeElements(buf *bytes.Buffer, ds *Dataset, elements []Element) error {
	sorted := make([]Element, len(elements))
	copy(sorted, elements)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tag < sorted[j].Tag })
	for _, el := range sorted {
		if err := writeElement(buf, ds, el); err != nil {
			return err
		}
	}
	return nil
}

func writeItem(buf *bytes.Buffer, ds *Dataset, it ItemID) error {
	elements := make([]Element, 0, len(ds.items[it].order))
	for _, idx := range ds.items[it].order {
		elements = append(elements, ds.elements[idx])
	}
	return writeElements(buf, ds, elements)
}

func writeElement(buf *bytes.Buffer, ds *Dataset, el Element) error {
	value := el.Value
	if el.VR == SQ {
		var seq bytes.Buffer
		for _, child := range el.Items {
			var itemBuf bytes.Buffer
			if err := writeItem(&itemBuf, ds, child); err != nil {
				return fmt.Errorf("sequence %s: %w", el.Tag, err)
			}
			writeTag(&seq, ItemTag)
			writeU32(&seq, uint32(itemBuf.Len()))
			seq.Write(itemBuf.Bytes())
		}
		value = seq.Bytes()
	} else if len(value)%2 == 1 {
		pad := byte(0x00)
		if el.VR.isText() {
			pad = ' '
		}
		padded := make([]byte, len(value)+1)
		copy(padded, value)
		padded[len(value)] = pad
		value = padded
	}

	writeTag(buf, el.Tag)
	buf.WriteString(string(el.VR))
	if el.VR.hasLongLength() {
		buf.Write([]byte{0, 0})
		writeU32(buf, uint32(len(value)))
	} else {
		if len(value) > 0xFFFF {
			return fmt.Errorf("element %s: %d bytes exceed the %s length field", el.Tag, len(value), el.VR)
		}
		writeU16(buf, uint16(len(value)))
	}
	buf.Write(value)
	return nil
}

func writeTag(buf *bytes.Buffer, t Tag) {
	writeU16(buf, t.Group())
	writeU16(buf, t.Element())
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
