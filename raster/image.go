package raster

import (
	"errors"
	"image"
	"image/color"
)

const (
	// MaxDimension is the largest width or height NewImage accepts.
	MaxDimension = 65535

	// MaxPixels is the largest width*height NewImage accepts. Decoders
	// check header dimensions against it before allocating.
	MaxPixels = 1 << 26
)

var (
	// ErrInvalidDimensions is returned when width or height is
	// non-positive or larger than MaxDimension, or the image has more
	// than MaxPixels pixels.
	ErrInvalidDimensions = errors.New("raster: invalid dimensions")

	// ErrInvalidFormat is returned for an unknown pixel format.
	ErrInvalidFormat = errors.New("raster: invalid pixel format")

	// ErrMismatch is returned when copying between images of different
	// dimensions or formats.
	ErrMismatch = errors.New("raster: image mismatch")
)

// Image is a rectangular pixel buffer anchored at (0, 0).
//
// Reads outside the image return zero values and writes outside the image
// are ignored.
type Image struct {
	pix    []byte
	width  int
	height int
	stride int
	format PixelFormat

	// Only meaningful for Indexed images
	mask    uint8
	palette *Palette
}

// NewImage allocates a zeroed image.
func NewImage(width, height int, format PixelFormat) (*Image, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, ErrInvalidDimensions
	}
	if width*height > MaxPixels {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	stride := width * format.BytesPerPixel()
	return &Image{
		pix:    make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// Width returns the width in pixels.
func (m *Image) Width() int { return m.width }

// Height returns the height in pixels.
func (m *Image) Height() int { return m.height }

// Format returns the pixel format.
func (m *Image) Format() PixelFormat { return m.format }

// Stride returns the number of bytes per row.
func (m *Image) Stride() int { return m.stride }

// Pix returns the underlying pixel data.
func (m *Image) Pix() []byte { return m.pix }

// Row returns the pixel data of row y, or nil if y is out of range.
func (m *Image) Row(y int) []byte {
	if y < 0 || y >= m.height {
		return nil
	}
	return m.pix[y*m.stride : (y+1)*m.stride]
}

// MaskIndex returns the palette index treated as transparent.
func (m *Image) MaskIndex() uint8 { return m.mask }

// SetMaskIndex changes the palette index treated as transparent.
func (m *Image) SetMaskIndex(i uint8) { m.mask = i }

// Palette returns the palette used to resolve indexed colors for At, if any.
func (m *Image) Palette() *Palette { return m.palette }

// SetPalette attaches a palette used to resolve indexed colors for At.
func (m *Image) SetPalette(p *Palette) { m.palette = p }

func (m *Image) offset(x, y int) int {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return -1
	}
	return y*m.stride + x*m.format.BytesPerPixel()
}

// Index returns the palette index at (x, y) of an Indexed image.
func (m *Image) Index(x, y int) uint8 {
	if i := m.offset(x, y); i >= 0 && m.format == Indexed {
		return m.pix[i]
	}
	return 0
}

// SetIndex sets the palette index at (x, y) of an Indexed image.
func (m *Image) SetIndex(x, y int, c uint8) {
	if i := m.offset(x, y); i >= 0 && m.format == Indexed {
		m.pix[i] = c
	}
}

// Gray returns the value and alpha at (x, y) of a Grayscale image.
func (m *Image) Gray(x, y int) (v, a uint8) {
	if i := m.offset(x, y); i >= 0 && m.format == Grayscale {
		return m.pix[i], m.pix[i+1]
	}
	return 0, 0
}

// SetGray sets the value and alpha at (x, y) of a Grayscale image.
func (m *Image) SetGray(x, y int, v, a uint8) {
	if i := m.offset(x, y); i >= 0 && m.format == Grayscale {
		m.pix[i], m.pix[i+1] = v, a
	}
}

// RGBA returns the non-premultiplied color at (x, y) of an RGB image.
func (m *Image) RGBA(x, y int) color.NRGBA {
	if i := m.offset(x, y); i >= 0 && m.format == RGB {
		s := m.pix[i : i+4 : i+4]
		return color.NRGBA{s[0], s[1], s[2], s[3]}
	}
	return color.NRGBA{}
}

// SetRGBA sets the non-premultiplied color at (x, y) of an RGB image.
func (m *Image) SetRGBA(x, y int, c color.NRGBA) {
	if i := m.offset(x, y); i >= 0 && m.format == RGB {
		s := m.pix[i : i+4 : i+4]
		s[0], s[1], s[2], s[3] = c.R, c.G, c.B, c.A
	}
}

// Clear sets every byte of the image to zero, which is index 0, transparent
// black or transparent gray depending on the format.
func (m *Image) Clear() {
	for i := range m.pix {
		m.pix[i] = 0
	}
}

// Fill sets every pixel of an RGB image to c, or every pixel of a
// Grayscale image to the luminance of c.
func (m *Image) Fill(c color.NRGBA) {
	switch m.format {
	case RGB:
		for i := 0; i < len(m.pix); i += 4 {
			m.pix[i], m.pix[i+1], m.pix[i+2], m.pix[i+3] = c.R, c.G, c.B, c.A
		}
	case Grayscale:
		v := luminance(c)
		for i := 0; i < len(m.pix); i += 2 {
			m.pix[i], m.pix[i+1] = v, c.A
		}
	}
}

// Clone returns a deep copy of the image. The attached palette is shared.
func (m *Image) Clone() *Image {
	dup := *m
	dup.pix = append([]byte(nil), m.pix...)
	return &dup
}

// CopyFrom overwrites the pixels of m with those of src.
func (m *Image) CopyFrom(src *Image) error {
	if src.width != m.width || src.height != m.height || src.format != m.format {
		return ErrMismatch
	}
	copy(m.pix, src.pix)
	m.mask = src.mask
	return nil
}

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model {
	if m.format == Indexed {
		if m.palette != nil {
			return m.palette.Colors()
		}
		return color.GrayModel
	}
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// At implements image.Image.
func (m *Image) At(x, y int) color.Color {
	switch m.format {
	case RGB:
		return m.RGBA(x, y)
	case Grayscale:
		v, a := m.Gray(x, y)
		return color.NRGBA{v, v, v, a}
	default:
		i := m.Index(x, y)
		if m.palette == nil {
			return color.Gray{Y: i}
		}
		return m.palette.Entry(int(i))
	}
}

func luminance(c color.NRGBA) uint8 {
	return color.GrayModel.Convert(color.NRGBA{c.R, c.G, c.B, 0xff}).(color.Gray).Y
}
