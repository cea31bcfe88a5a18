/*
Package raster implements the in-memory pixel buffers and palettes that the
sprite file codecs decode into and encode from.

Three pixel formats are supported. Indexed images store one palette index
per pixel, Grayscale images store a value and an alpha byte per pixel and
RGB images store four bytes per pixel in R, G, B, A order. Pixels are kept
row-major in a single slice with no padding between rows.
*/
package raster

// PixelFormat identifies how an Image stores its pixels.
type PixelFormat uint8

const (
	// RGB stores R, G, B, A bytes per pixel.
	RGB PixelFormat = iota

	// Grayscale stores a value and an alpha byte per pixel.
	Grayscale

	// Indexed stores one palette index per pixel.
	Indexed

	formatCount
)

var bytesPerPixel = [formatCount]int{
	RGB:       4,
	Grayscale: 2,
	Indexed:   1,
}

// BytesPerPixel returns the number of bytes each pixel occupies, or 0 for
// an unknown format.
func (f PixelFormat) BytesPerPixel() int {
	if !f.IsValid() {
		return 0
	}
	return bytesPerPixel[f]
}

// IsValid reports whether f is a known format.
func (f PixelFormat) IsValid() bool {
	return f < formatCount
}

func (f PixelFormat) String() string {
	switch f {
	case RGB:
		return "rgb"
	case Grayscale:
		return "grayscale"
	case Indexed:
		return "indexed"
	default:
		return "unknown"
	}
}

// ParsePixelFormat is the inverse of PixelFormat.String.
func ParsePixelFormat(s string) (PixelFormat, bool) {
	for f := PixelFormat(0); f < formatCount; f++ {
		if f.String() == s {
			return f, true
		}
	}
	return 0, false
}
