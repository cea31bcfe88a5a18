package raster

import (
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
)

// FromImage converts m into a new Image of the given format. For Indexed
// targets the returned palette holds the colors the indices refer to; for
// other targets it is nil.
//
// Sources that already carry a palette of at most MaxColors entries keep
// it. Anything else is reduced with a median cut quantizer; if the source
// has fully transparent pixels, index 0 is reserved for them and the
// remaining colors are quantized into indices 1 to 255.
func FromImage(m image.Image, format PixelFormat) (*Image, *Palette, error) {
	b := m.Bounds()
	dst, err := NewImage(b.Dx(), b.Dy(), format)
	if err != nil {
		return nil, nil, err
	}

	switch format {
	case RGB:
		for y := 0; y < dst.height; y++ {
			for x := 0; x < dst.width; x++ {
				dst.SetRGBA(x, y, color.NRGBAModel.Convert(m.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA))
			}
		}
		return dst, nil, nil
	case Grayscale:
		for y := 0; y < dst.height; y++ {
			for x := 0; x < dst.width; x++ {
				c := color.NRGBAModel.Convert(m.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				dst.SetGray(x, y, luminance(c), c.A)
			}
		}
		return dst, nil, nil
	}

	if src, ok := m.(*Image); ok && src.format == Indexed {
		copy(dst.pix, src.pix)
		dst.mask = src.mask
		p := src.palette.Clone()
		if p == nil {
			p = GrayRamp()
		}
		dst.palette = p
		return dst, p, nil
	}

	if pm, ok := m.(*image.Paletted); ok && len(pm.Palette) <= MaxColors {
		p, err := PaletteOf(pm.Palette)
		if err != nil {
			return nil, nil, err
		}
		for y := 0; y < dst.height; y++ {
			for x := 0; x < dst.width; x++ {
				dst.SetIndex(x, y, pm.ColorIndexAt(b.Min.X+x, b.Min.Y+y))
			}
		}
		dst.palette = p
		return dst, p, nil
	}

	if cp, ok := m.ColorModel().(color.Palette); ok && len(cp) <= MaxColors {
		p, err := PaletteOf(cp)
		if err != nil {
			return nil, nil, err
		}
		for y := 0; y < dst.height; y++ {
			for x := 0; x < dst.width; x++ {
				dst.SetIndex(x, y, uint8(cp.Index(m.At(b.Min.X+x, b.Min.Y+y))))
			}
		}
		dst.palette = p
		return dst, p, nil
	}

	p := quantizeInto(dst, m)
	dst.palette = p
	return dst, p, nil
}

func hasTransparency(m image.Image) bool {
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := m.At(x, y).RGBA(); a == 0 {
				return true
			}
		}
	}
	return false
}

func quantizeInto(dst *Image, m image.Image) *Palette {
	b := m.Bounds()

	// Reserve index 0 for transparent pixels
	base := 0
	if hasTransparency(m) {
		base = 1
	}

	q := quantize.MedianCutQuantizer{}
	cp := q.Quantize(make(color.Palette, 0, MaxColors-base), m)

	p := NewPalette(base + len(cp))
	for i, c := range cp {
		p.entries[base+i] = opaque(color.RGBAModel.Convert(c).(color.RGBA))
	}

	for y := 0; y < dst.height; y++ {
		for x := 0; x < dst.width; x++ {
			c := m.At(b.Min.X+x, b.Min.Y+y)
			if _, _, _, a := c.RGBA(); a == 0 && base > 0 {
				dst.SetIndex(x, y, 0)
				continue
			}
			dst.SetIndex(x, y, uint8(base+cp.Index(c)))
		}
	}

	return p
}

// FormatOf returns the pixel format that holds m without loss: Indexed
// for paletted images, Grayscale for gray images and RGB otherwise.
func FormatOf(m image.Image) PixelFormat {
	if r, ok := m.(*Image); ok {
		return r.format
	}
	cm := m.ColorModel()
	if _, ok := cm.(color.Palette); ok {
		return Indexed
	}
	if cm == color.GrayModel || cm == color.Gray16Model {
		return Grayscale
	}
	return RGB
}

// StdImage copies m into the closest standard library image type so it
// can be handed to the std encoders. Indexed images become an
// *image.Paletted with a palette of MaxColors entries, opaque Grayscale
// images an *image.Gray and everything else an *image.NRGBA.
func (m *Image) StdImage() image.Image {
	r := m.Bounds()

	switch m.format {
	case Indexed:
		p := m.palette.Clone()
		if p == nil {
			p = GrayRamp()
		}
		p.Resize(MaxColors)
		dst := image.NewPaletted(r, p.Colors())
		copy(dst.Pix, m.pix)
		return dst
	case Grayscale:
		solid := true
		for i := 1; i < len(m.pix); i += 2 {
			if m.pix[i] != 0xff {
				solid = false
				break
			}
		}
		if solid {
			dst := image.NewGray(r)
			for i := range dst.Pix {
				dst.Pix[i] = m.pix[i*2]
			}
			return dst
		}
	}

	dst := image.NewNRGBA(r)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			dst.SetNRGBA(x, y, color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA))
		}
	}
	return dst
}
