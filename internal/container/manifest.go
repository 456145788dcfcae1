package container

import (
	"encoding/xml"
	"fmt"
	"strings"
	"unicode"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/detection"
)

// Manifest is the decoded stack document of a container.
type Manifest struct {
	// Format is the annotation format declared by the manifest, or
	// FormatUnknown when the image element has no format attribute.
	Format detection.Format

	// Stacks lists one entry per viewpoint in document order.
	Stacks []Stack
}

// Stack describes one viewpoint and the entries that belong to it.
type Stack struct {
	// View is the viewpoint name from the view attribute.
	View string

	// ImageID is the stack's name attribute with leading non-digit
	// characters removed. May be empty when the name holds no digits.
	ImageID string

	// PixelLayer is the first layer's src: the viewpoint's pixel data.
	PixelLayer string

	// AnnotationLayers are the remaining layer srcs, in document order.
	AnnotationLayers []string
}

type xmlImage struct {
	XMLName xml.Name   `xml:"image"`
	Format  string     `xml:"format,attr,omitempty"`
	Stacks  []xmlStack `xml:"stack"`
}

type xmlStack struct {
	Name   string     `xml:"name,attr"`
	View   string     `xml:"view,attr"`
	Layers []xmlLayer `xml:"layer"`
}

type xmlLayer struct {
	Src string `xml:"src,attr"`
}

// ParseManifest decodes a stack document.
//
// The root must be an image element. For each stack, the view and name
// attributes are required and the first layer is the pixel-data reference;
// every following layer is an annotation reference.
//
// # Errors
//
//   - ErrMalformedManifest: not XML, wrong root, missing view or name
//   - ErrMissingPixelLayer: a stack without any layer, or whose first layer has no src
//   - ErrUnsupportedFileType: a format attribute naming an unknown format
func ParseManifest(data []byte) (*Manifest, error) {
	var doc xmlImage
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, detection.NewError(detection.ErrMalformedManifest, ManifestEntry, err)
	}

	m := &Manifest{Format: detection.FormatUnknown}
	if doc.Format != "" {
		f, err := detection.ParseFormat(doc.Format)
		if err != nil {
			return nil, err
		}
		m.Format = f
	}

	for i, s := range doc.Stacks {
		if s.View == "" {
			return nil, detection.NewError(detection.ErrMalformedManifest, "view", errStack(i))
		}
		if s.Name == "" {
			return nil, detection.NewError(detection.ErrMalformedManifest, "name", errStack(i))
		}
		if len(s.Layers) == 0 || s.Layers[0].Src == "" {
			return nil, detection.NewError(detection.ErrMissingPixelLayer, s.View, nil)
		}

		stack := Stack{
			View:       s.View,
			ImageID:    stripNonDigitPrefix(s.Name),
			PixelLayer: s.Layers[0].Src,
		}
		for _, l := range s.Layers[1:] {
			if l.Src != "" {
				stack.AnnotationLayers = append(stack.AnnotationLayers, l.Src)
			}
		}
		m.Stacks = append(m.Stacks, stack)
	}

	return m, nil
}

func errStack(i int) error {
	return fmt.Errorf("stack %d", i)
}

func stripNonDigitPrefix(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
}

// ResolveFormat returns the container's annotation format. A declared format
// wins; otherwise the first stack's pixel layer extension decides. A
// manifest with no stacks and no declared format resolves to FormatUnknown.
func (m *Manifest) ResolveFormat() (detection.Format, error) {
	if m.Format != detection.FormatUnknown {
		return m.Format, nil
	}
	if len(m.Stacks) == 0 {
		return detection.FormatUnknown, nil
	}
	return ClassifyFile(m.Stacks[0].PixelLayer)
}

// Marshal encodes the manifest as a stack document. Stack names are written
// as "pixel_<ImageID>".
func (m *Manifest) Marshal() ([]byte, error) {
	doc := xmlImage{Format: string(m.Format)}
	for _, s := range m.Stacks {
		xs := xmlStack{
			Name: "pixel_" + s.ImageID,
			View: s.View,
		}
		xs.Layers = append(xs.Layers, xmlLayer{Src: s.PixelLayer})
		for _, a := range s.AnnotationLayers {
			xs.Layers = append(xs.Layers, xmlLayer{Src: a})
		}
		doc.Stacks = append(doc.Stacks, xs)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
