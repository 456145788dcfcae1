package imaging

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultMaskColor is the overlay color used when none is given.
const DefaultMaskColor = "#00ff00"

// ParseColor parses a "#RRGGBB" or "#RGB" hex string into an opaque color.
// The leading '#' is optional. An empty string yields DefaultMaskColor.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultMaskColor
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

// ColorHex formats a color as "#rrggbb", dropping alpha.
func ColorHex(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}
