package dicom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

var (
	testSequence    = NewTag(0x4010, 0x1011)
	testNested      = NewTag(0x4010, 0x1037)
	testDescription = NewTag(0x4010, 0x1013)
	testPolygon     = NewTag(0x4010, 0x101A)
	testPatientName = NewTag(0x0010, 0x0010)
)

func buildTestDataset() *Dataset {
	ds := New()
	ds.SetString(Root, SOPClassUID, UI, "1.2.840.10008.5.1.4.1.1.501.3")
	ds.SetString(Root, SOPInstanceUID, UI, "1.2.3.4.5")
	ds.SetString(Root, testPatientName, PN, "DOE^JOHN")
	ds.SetUint16(Root, Rows, 4)

	threat := ds.AddItem(Root, testSequence)
	ds.SetString(threat, testDescription, LT, "knife")
	pto := ds.AddItem(threat, testNested)
	ds.SetFloats(pto, testPolygon, FL, []float64{10, 20, 0, 40.5, 60, 0})

	second := ds.AddItem(Root, testSequence)
	ds.SetString(second, testDescription, LT, "gun")
	return ds
}

func TestWriteParse_RoundTrip(t *testing.T) {
	data, err := Write(buildTestDataset())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if string(data[128:132]) != "DICM" {
		t.Fatal("missing DICM marker")
	}

	ds, err := Parse(data, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if name, _ := ds.String(Root, testPatientName); name != "DOE^JOHN" {
		t.Errorf("patient name: got %q", name)
	}
	if uid, _ := ds.String(Root, SOPInstanceUID); uid != "1.2.3.4.5" {
		t.Errorf("SOP instance: got %q", uid)
	}
	if rows, ok := ds.Uint16(Root, Rows); !ok || rows != 4 {
		t.Errorf("rows: got %d, %v", rows, ok)
	}
	if ts, _ := ds.String(Root, TransferSyntaxUID); ts != ExplicitVRLittleEndian {
		t.Errorf("transfer syntax: got %q", ts)
	}
	if cls, _ := ds.String(Root, MediaStorageSOPClassUID); cls != "1.2.840.10008.5.1.4.1.1.501.3" {
		t.Errorf("media storage class: got %q", cls)
	}

	threats, ok := ds.Items(Root, testSequence)
	if !ok || len(threats) != 2 {
		t.Fatalf("threat sequence: got %d items, ok=%v", len(threats), ok)
	}
	if desc, _ := ds.String(threats[0], testDescription); desc != "knife" {
		t.Errorf("first description: got %q", desc)
	}
	if desc, _ := ds.String(threats[1], testDescription); desc != "gun" {
		t.Errorf("second description: got %q", desc)
	}

	ptos, ok := ds.Items(threats[0], testNested)
	if !ok || len(ptos) != 1 {
		t.Fatalf("nested sequence: got %v, ok=%v", ptos, ok)
	}
	poly, ok := ds.Floats(ptos[0], testPolygon)
	if !ok || len(poly) != 6 {
		t.Fatalf("polygon: got %v, ok=%v", poly, ok)
	}
	want := []float64{10, 20, 0, 40.5, 60, 0}
	for i := range want {
		if math.Abs(poly[i]-want[i]) > 1e-6 {
			t.Errorf("polygon[%d]: got %v, want %v", i, poly[i], want[i])
		}
	}

	if _, ok := ds.String(threats[1], testPolygon); ok {
		t.Error("attribute from a sibling item leaked into the second threat")
	}
}

func TestWrite_GroupLength(t *testing.T) {
	data, err := Write(buildTestDataset())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// (0002,0000) UL 4 <len> starts right after the marker.
	if binary.LittleEndian.Uint16(data[132:]) != 0x0002 || binary.LittleEndian.Uint16(data[134:]) != 0x0000 {
		t.Fatal("first element is not the group length")
	}
	groupLen := int(binary.LittleEndian.Uint32(data[140:]))
	next := 144 + groupLen
	if binary.LittleEndian.Uint16(data[next:]) == 0x0002 {
		t.Error("group length does not cover the whole meta group")
	}
	if binary.LittleEndian.Uint16(data[next-4:]) == 0x0008 {
		t.Error("group length overshoots into the body")
	}
}

func TestWrite_EvenLengths(t *testing.T) {
	ds := New()
	ds.SetString(Root, SOPInstanceUID, UI, "1.2.3")
	ds.SetString(Root, testPatientName, PN, "ABC")

	data, err := Write(ds)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !bytes.Contains(data, []byte("1.2.3\x00")) {
		t.Error("UI value not padded with NUL")
	}
	if !bytes.Contains(data, []byte("ABC ")) {
		t.Error("PN value not padded with a space")
	}

	back, err := Parse(data, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if v, _ := back.String(Root, testPatientName); v != "ABC" {
		t.Errorf("padding not trimmed: %q", v)
	}
}

// le builds a little-endian byte stream from uint16/uint32/string parts.
func le(parts ...interface{}) []byte {
	var buf bytes.Buffer
	for _, p := range parts {
		switch v := p.(type) {
		case uint16:
			binary.Write(&buf, binary.LittleEndian, v)
		case uint32:
			binary.Write(&buf, binary.LittleEndian, v)
		case string:
			buf.WriteString(v)
		}
	}
	return buf.Bytes()
}

func TestParse_ImplicitUndefinedLengths(t *testing.T) {
	data := le(
		uint16(0x0010), uint16(0x0010), uint32(4), "DOE ",
		uint16(0x4010), uint16(0x1011), uint32(0xFFFFFFFF),
		uint16(0xFFFE), uint16(0xE000), uint32(0xFFFFFFFF),
		uint16(0x4010), uint16(0x1013), uint32(6), "KNIFE ",
		uint16(0xFFFE), uint16(0xE00D), uint32(0),
		uint16(0xFFFE), uint16(0xE0DD), uint32(0),
	)

	ds, err := Parse(data, Dictionary{testDescription: LT})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if name, _ := ds.String(Root, testPatientName); name != "DOE" {
		t.Errorf("name: got %q", name)
	}
	items, ok := ds.Items(Root, testSequence)
	if !ok || len(items) != 1 {
		t.Fatalf("sequence: got %v, ok=%v", items, ok)
	}
	if desc, _ := ds.String(items[0], testDescription); desc != "KNIFE" {
		t.Errorf("description: got %q", desc)
	}
}

func TestParse_ExplicitUndefinedLengthSequence(t *testing.T) {
	data := le(
		uint16(0x4010), uint16(0x1011), "SQ", uint16(0), uint32(0xFFFFFFFF),
		uint16(0xFFFE), uint16(0xE000), uint32(0xFFFFFFFF),
		uint16(0x4010), uint16(0x1013), "LT", uint16(4), "GUN ",
		uint16(0xFFFE), uint16(0xE00D), uint32(0),
		uint16(0xFFFE), uint16(0xE0DD), uint32(0),
	)

	ds, err := Parse(data, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	items, _ := ds.Items(Root, testSequence)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if desc, _ := ds.String(items[0], testDescription); desc != "GUN" {
		t.Errorf("description: got %q", desc)
	}
}

func TestParse_Errors(t *testing.T) {
	full, err := Write(buildTestDataset())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	t.Run("truncated", func(t *testing.T) {
		_, err := Parse(full[:len(full)-3], nil)
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("got %v, want ErrTruncated", err)
		}
	})

	t.Run("big endian", func(t *testing.T) {
		ds := New()
		ds.SetString(Root, TransferSyntaxUID, UI, "1.2.840.10008.1.2.2")
		var buf bytes.Buffer
		if err := writeElement(&buf, ds, Element{Tag: TransferSyntaxUID, VR: UI, Value: []byte("1.2.840.10008.1.2.2")}); err != nil {
			t.Fatalf("writeElement failed: %v", err)
		}
		_, err := Parse(buf.Bytes(), nil)
		if !errors.Is(err, ErrUnsupportedTransferSyntax) {
			t.Errorf("got %v, want ErrUnsupportedTransferSyntax", err)
		}
	})
}

func TestDataset_Accessors(t *testing.T) {
	ds := New()
	ds.SetFloats(Root, testPolygon, FD, []float64{1.25, -3})
	ds.SetFloats(Root, NewTag(0x0018, 0x0050), DS, []float64{0.5, 2})
	ds.SetUint32(Root, NewTag(0x0028, 0x0008), 7)

	if v, ok := ds.Floats(Root, testPolygon); !ok || v[0] != 1.25 || v[1] != -3 {
		t.Errorf("FD floats: got %v, %v", v, ok)
	}
	if v, ok := ds.Floats(Root, NewTag(0x0018, 0x0050)); !ok || len(v) != 2 || v[1] != 2 {
		t.Errorf("DS floats: got %v, %v", v, ok)
	}
	if v, ok := ds.Uint32(Root, NewTag(0x0028, 0x0008)); !ok || v != 7 {
		t.Errorf("UL: got %d, %v", v, ok)
	}
	if _, ok := ds.Floats(Root, testDescription); ok {
		t.Error("Floats reported a missing attribute as present")
	}
	if _, ok := ds.Items(Root, testPolygon); ok {
		t.Error("Items accepted a non-sequence attribute")
	}
	if _, ok := ds.Lookup(ItemID(99), testPolygon); ok {
		t.Error("Lookup accepted an invalid item id")
	}

	ds.SetUint16(Root, Rows, 1)
	ds.SetUint16(Root, Rows, 2)
	if v, _ := ds.Uint16(Root, Rows); v != 2 {
		t.Errorf("Set did not replace: got %d", v)
	}
	if n := len(ds.Tags(Root)); n != 4 {
		t.Errorf("Tags: got %d, want 4", n)
	}
}

func TestTag_String(t *testing.T) {
	if s := NewTag(0x4010, 0x101A).String(); s != "(4010,101A)" {
		t.Errorf("got %s", s)
	}
}
