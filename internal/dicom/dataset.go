package dicom

import (
	"encoding/binary"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ItemID addresses one item (a set of attributes) inside a Dataset. The
// top-level dataset is the Root item; every sequence item gets its own id.
type ItemID int

// Root is the top-level item of every Dataset.
const Root ItemID = 0

// Element is one attribute. Value holds the raw little-endian bytes without
// padding; Items is set only for sequences (VR SQ).
type Element struct {
	Tag   Tag
	VR    VR
	Value []byte
	Items []ItemID
}

type item struct {
	byTag map[Tag]int
	order []int
}

// Dataset is a parsed or under-construction attribute tree.
//
// Elements and items live in two flat arenas and refer to each other by
// index, so nested sequences never form pointer graphs. Lookups go through
// typed accessors that report whether the attribute is present.
type Dataset struct {
	elements []Element
	items    []item
}

// New returns an empty dataset holding only the Root item.
func New() *Dataset {
	ds := &Dataset{}
	ds.newItem()
	return ds
}

func (ds *Dataset) newItem() ItemID {
	ds.items = append(ds.items, item{byTag: make(map[Tag]int)})
	return ItemID(len(ds.items) - 1)
}

func (ds *Dataset) valid(it ItemID) bool {
	return it >= 0 && int(it) < len(ds.items)
}

// Lookup returns the element for tag inside item it.
func (ds *Dataset) Lookup(it ItemID, tag Tag) (*Element, bool) {
	if !ds.valid(it) {
		return nil, false
	}
	idx, ok := ds.items[it].byTag[tag]
	if !ok {
		return nil, false
	}
	return &ds.elements[idx], true
}

// Tags returns the tags present in item it, in ascending order.
func (ds *Dataset) Tags(it ItemID) []Tag {
	if !ds.valid(it) {
		return nil
	}
	tags := make([]Tag, 0, len(ds.items[it].order))
	for _, idx := range ds.items[it].order {
		tags = append(tags, ds.elements[idx].Tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Bytes returns the raw value of tag.
func (ds *Dataset) Bytes(it ItemID, tag Tag) ([]byte, bool) {
	el, ok := ds.Lookup(it, tag)
	if !ok {
		return nil, false
	}
	return el.Value, true
}

// String returns a text value with trailing padding removed. Multi-valued
// attributes keep their backslash separators.
func (ds *Dataset) String(it ItemID, tag Tag) (string, bool) {
	el, ok := ds.Lookup(it, tag)
	if !ok {
		return "", false
	}
	return strings.TrimRight(string(el.Value), " \x00"), true
}

// Floats returns the numeric values of an FL, FD, OF, OD, DS or IS attribute.
// ok is false when the attribute is absent, has another VR, or cannot be
// parsed.
func (ds *Dataset) Floats(it ItemID, tag Tag) ([]float64, bool) {
	el, ok := ds.Lookup(it, tag)
	if !ok {
		return nil, false
	}

	switch el.VR {
	case FL, OF:
		n := len(el.Value) / 4
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(el.Value[i*4:])))
		}
		return out, true
	case FD, OD:
		n := len(el.Value) / 8
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(el.Value[i*8:]))
		}
		return out, true
	case DS, IS:
		s := strings.TrimRight(string(el.Value), " \x00")
		if s == "" {
			return nil, true
		}
		parts := strings.Split(s, `\`)
		out := make([]float64, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, false
			}
			out[i] = v
		}
		return out, true
	}
	return nil, false
}

// Uint16 returns the first value of a US attribute.
func (ds *Dataset) Uint16(it ItemID, tag Tag) (uint16, bool) {
	el, ok := ds.Lookup(it, tag)
	if !ok || len(el.Value) < 2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(el.Value), true
}

// Uint32 returns the first value of a UL attribute.
func (ds *Dataset) Uint32(it ItemID, tag Tag) (uint32, bool) {
	el, ok := ds.Lookup(it, tag)
	if !ok || len(el.Value) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(el.Value), true
}

// Items returns the items of a sequence attribute.
func (ds *Dataset) Items(it ItemID, tag Tag) ([]ItemID, bool) {
	el, ok := ds.Lookup(it, tag)
	if !ok || el.VR != SQ {
		return nil, false
	}
	return el.Items, true
}

// Set stores a raw value in item it, replacing any existing element with
// the same tag.
func (ds *Dataset) Set(it ItemID, tag Tag, vr VR, value []byte) {
	ds.put(it, Element{Tag: tag, VR: vr, Value: value})
}

func (ds *Dataset) put(it ItemID, el Element) int {
	if !ds.valid(it) {
		panic("dicom: invalid item id " + strconv.Itoa(int(it)))
	}
	if idx, ok := ds.items[it].byTag[el.Tag]; ok {
		ds.elements[idx] = el
		return idx
	}
	ds.elements = append(ds.elements, el)
	idx := len(ds.elements) - 1
	ds.items[it].byTag[el.Tag] = idx
	ds.items[it].order = append(ds.items[it].order, idx)
	return idx
}

// SetString stores a text value. Padding is added when written.
func (ds *Dataset) SetString(it ItemID, tag Tag, vr VR, s string) {
	ds.Set(it, tag, vr, []byte(s))
}

// SetFloats stores numeric values as FL (float32), FD (float64) or DS
// (backslash-separated decimal strings).
func (ds *Dataset) SetFloats(it ItemID, tag Tag, vr VR, values []float64) {
	var buf []byte
	switch vr {
	case FD, OD:
		buf = make([]byte, 8*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
		}
	case DS, IS:
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		buf = []byte(strings.Join(parts, `\`))
	default:
		buf = make([]byte, 4*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
		}
	}
	ds.Set(it, tag, vr, buf)
}

// SetUint16 stores US values.
func (ds *Dataset) SetUint16(it ItemID, tag Tag, values ...uint16) {
	buf := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	ds.Set(it, tag, US, buf)
}

// SetUint32 stores UL values.
func (ds *Dataset) SetUint32(it ItemID, tag Tag, values ...uint32) {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	ds.Set(it, tag, UL, buf)
}

// AddItem appends a new item to the sequence tag inside item it, creating
// the sequence if needed, and returns the new item's id.
func (ds *Dataset) AddItem(it ItemID, tag Tag) ItemID {
	child := ds.newItem()
	if el, ok := ds.Lookup(it, tag); ok && el.VR == SQ {
		el.Items = append(el.Items, child)
		return child
	}
	ds.put(it, Element{Tag: tag, VR: SQ, Items: []ItemID{child}})
	return child
}

// AddSequence creates an empty sequence, replacing any existing element.
func (ds *Dataset) AddSequence(it ItemID, tag Tag) {
	ds.put(it, Element{Tag: tag, VR: SQ, Items: []ItemID{}})
}
