package dicom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const (
	preambleLength  = 128
	magic           = "DICM"
	undefinedLength = 0xFFFFFFFF
)

// ErrTruncated is returned when the input ends in the middle of an element.
var ErrTruncated = errors.New("dicom: truncated data")

// ErrUnsupportedTransferSyntax is returned for big-endian, deflated and
// compressed transfer syntaxes.
var ErrUnsupportedTransferSyntax = errors.New("dicom: unsupported transfer syntax")

type reader struct {
	data     []byte
	pos      int
	explicit bool
	dict     Dictionary
	ds       *Dataset
}

// Parse decodes a DICOM stream into a Dataset.
//
// The 128-byte preamble and "DICM" marker are optional. File meta
// information (group 0002) is always explicit VR little endian; the body
// follows the declared transfer syntax. Without meta information the body
// encoding is detected from the first element. Both defined and undefined
// length sequences and items are accepted.
//
// dict supplies VRs for implicit-VR data beyond the built-in table; it may
// be nil.
func Parse(data []byte, dict Dictionary) (*Dataset, error) {
	r := &reader{data: data, dict: dict, ds: New()}

	if len(data) >= preambleLength+len(magic) && string(data[preambleLength:preambleLength+len(magic)]) == magic {
		r.pos = preambleLength + len(magic)
	} else if len(data) >= len(magic) && string(data[:len(magic)]) == magic {
		r.pos = len(magic)
	}

	// File meta information.
	r.explicit = true
	for r.remaining() >= 4 && binary.LittleEndian.Uint16(r.data[r.pos:]) == 0x0002 {
		if err := r.readElement(Root); err != nil {
			return nil, fmt.Errorf("file meta information: %w", err)
		}
	}

	ts, hasTS := r.ds.String(Root, TransferSyntaxUID)
	switch {
	case hasTS && ts == ExplicitVRLittleEndian:
		r.explicit = true
	case hasTS && ts == ImplicitVRLittleEndian:
		r.explicit = false
	case hasTS:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTransferSyntax, ts)
	default:
		r.explicit = r.looksExplicit()
	}

	if err := r.readItem(Root, len(r.data), false); err != nil {
		return nil, err
	}
	return r.ds, nil
}

func (r *reader) remaining() int { return len(r.data) - r.pos }

// looksExplicit guesses the body encoding by checking whether the bytes
// after the first tag spell a known VR.
func (r *reader) looksExplicit() bool {
	if r.remaining() < 6 {
		return true
	}
	return VR(r.data[r.pos+4 : r.pos+6]).valid()
}

func (r *reader) u16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) tag() (Tag, error) {
	g, err := r.u16()
	if err != nil {
		return 0, err
	}
	e, err := r.u16()
	if err != nil {
		return 0, err
	}
	return NewTag(g, e), nil
}

func (r *reader) peekTag() (Tag, bool) {
	if r.remaining() < 4 {
		return 0, false
	}
	g := binary.LittleEndian.Uint16(r.data[r.pos:])
	e := binary.LittleEndian.Uint16(r.data[r.pos+2:])
	return NewTag(g, e), true
}

// readItem reads elements into it until end, or until an item delimiter
// when delimited is true.
func (r *reader) readItem(it ItemID, end int, delimited bool) error {
	for r.pos < end {
		t, ok := r.peekTag()
		if !ok {
			// Trailing padding shorter than a tag.
			if !delimited && r.pos < end {
				r.pos = end
				return nil
			}
			return ErrTruncated
		}
		if t == ItemDelimitationTag {
			r.pos += 4
			if _, err := r.u32(); err != nil {
				return err
			}
			if delimited {
				return nil
			}
			continue
		}
		if err := r.readElement(it); err != nil {
			return err
		}
	}
	if delimited {
		return fmt.Errorf("%w: missing item delimiter", ErrTruncated)
	}
	return nil
}

func (r *reader) readElement(it ItemID) error {
	t, err := r.tag()
	if err != nil {
		return err
	}

	var vr VR
	var length uint32
	if r.explicit {
		if r.remaining() < 2 {
			return ErrTruncated
		}
		vr = VR(r.data[r.pos : r.pos+2])
		r.pos += 2
		if vr.hasLongLength() || !vr.valid() {
			r.pos += 2
			length, err = r.u32()
		} else {
			var l16 uint16
			l16, err = r.u16()
			length = uint32(l16)
		}
		if err != nil {
			return err
		}
	} else {
		vr = r.dict.lookup(t)
		if length, err = r.u32(); err != nil {
			return err
		}
	}

	if vr == SQ || (vr == UN && length == undefinedLength) {
		el := Element{Tag: t, VR: SQ, Items: []ItemID{}}
		idx := r.ds.put(it, el)
		return r.readSequence(idx, length)
	}

	if length == undefinedLength {
		return fmt.Errorf("element %s: undefined length %s value not supported", t, vr)
	}
	if int64(length) > int64(r.remaining()) {
		return fmt.Errorf("element %s: %w", t, ErrTruncated)
	}

	value := make([]byte, length)
	copy(value, r.data[r.pos:r.pos+int(length)])
	r.pos += int(length)

	// Text values keep their padding in the stream; accessors trim it.
	if vr == UI {
		value = []byte(strings.TrimRight(string(value), "\x00"))
	}
	r.ds.put(it, Element{Tag: t, VR: vr, Value: value})
	return nil
}

func (r *reader) readSequence(idx int, length uint32) error {
	end := len(r.data)
	delimited := length == undefinedLength
	if !delimited {
		if int64(length) > int64(r.remaining()) {
			return fmt.Errorf("sequence %s: %w", r.ds.elements[idx].Tag, ErrTruncated)
		}
		end = r.pos + int(length)
	}

	for r.pos < end {
		t, err := r.tag()
		if err != nil {
			return err
		}
		itemLength, err := r.u32()
		if err != nil {
			return err
		}

		switch t {
		case SequenceDelimitationTag:
			if !delimited {
				return fmt.Errorf("sequence %s: unexpected sequence delimiter", r.ds.elements[idx].Tag)
			}
			return nil
		case ItemTag:
		default:
			return fmt.Errorf("sequence %s: expected item, got %s", r.ds.elements[idx].Tag, t)
		}

		child := r.ds.newItem()
		r.ds.elements[idx].Items = append(r.ds.elements[idx].Items, child)

		if itemLength == undefinedLength {
			if err := r.readItem(child, end, true); err != nil {
				return err
			}
			continue
		}
		if int64(itemLength) > int64(r.remaining()) {
			return fmt.Errorf("item in %s: %w", r.ds.elements[idx].Tag, ErrTruncated)
		}
		if err := r.readItem(child, r.pos+int(itemLength), false); err != nil {
			return err
		}
	}

	if delimited {
		return fmt.Errorf("sequence %s: %w: missing sequence delimiter", r.ds.elements[idx].Tag, ErrTruncated)
	}
	return nil
}
