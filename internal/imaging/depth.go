package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"
)

// FindGrayValue maps a 16-bit sample to an 8-bit grey level by splitting
// the 16-bit range into 256 equal intervals and returning the index of the
// interval v falls in. 0 maps to 0 and 65535 to 255.
func FindGrayValue(v uint16) uint8 {
	return uint8(v >> 8)
}

// IntervalMidpoint returns the 16-bit value at the middle of interval i.
// It is the value an 8-bit level i widens to.
func IntervalMidpoint(i uint8) uint16 {
	return uint16(i)<<8 | 0x80
}

// Gray16ToRGBA converts a 16-bit greyscale image to an opaque 8-bit RGBA
// image. Every channel of an output pixel is FindGrayValue of the source
// sample.
func Gray16ToRGBA(src *image.Gray16) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			g := FindGrayValue(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y)
			dst.SetRGBA(x, y, color.RGBA{R: g, G: g, B: g, A: 0xFF})
		}
	}
	return dst
}

// RGBAToGray16 converts any image to 16-bit greyscale. The red channel of
// each pixel selects one of 256 intervals of the 16-bit range and the
// output sample is that interval's midpoint.
func RGBAToGray16(src image.Image) *image.Gray16 {
	rgba := clone.AsRGBA(src)
	b := rgba.Bounds()
	dst := image.NewGray16(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r := rgba.Pix[rgba.PixOffset(b.Min.X+x, b.Min.Y+y)]
			dst.SetGray16(x, y, color.Gray16{Y: IntervalMidpoint(r)})
		}
	}
	return dst
}
