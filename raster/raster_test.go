package raster

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImage(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		format PixelFormat
		size   int
		err    error
	}{
		{"indexed", 3, 2, Indexed, 6, nil},
		{"grayscale", 3, 2, Grayscale, 12, nil},
		{"rgb", 3, 2, RGB, 24, nil},
		{"zero width", 0, 2, RGB, 0, ErrInvalidDimensions},
		{"negative height", 2, -1, RGB, 0, ErrInvalidDimensions},
		{"too wide", MaxDimension + 1, 1, Indexed, 0, ErrInvalidDimensions},
		{"too many pixels", MaxDimension, MaxDimension, RGB, 0, ErrInvalidDimensions},
		{"bad format", 1, 1, PixelFormat(9), 0, ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewImage(tt.width, tt.height, tt.format)
			if tt.err != nil {
				assert.Equal(t, tt.err, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, m.Pix(), tt.size)
			assert.Equal(t, tt.width*tt.format.BytesPerPixel(), m.Stride())
		})
	}
}

func TestImageBoundsGuard(t *testing.T) {
	m, err := NewImage(2, 2, Indexed)
	require.NoError(t, err)

	m.SetIndex(5, 5, 7)
	m.SetIndex(-1, 0, 7)
	assert.Equal(t, make([]byte, 4), m.Pix())
	assert.Equal(t, uint8(0), m.Index(2, 0))
	assert.Nil(t, m.Row(2))

	m.SetIndex(1, 1, 9)
	assert.Equal(t, uint8(9), m.Index(1, 1))
	assert.Equal(t, []byte{0, 9}, m.Row(1))
}

func TestImageAccessorsCheckFormat(t *testing.T) {
	m, err := NewImage(1, 1, RGB)
	require.NoError(t, err)

	m.SetIndex(0, 0, 3)
	m.SetGray(0, 0, 3, 3)
	assert.Equal(t, make([]byte, 4), m.Pix())

	m.SetRGBA(0, 0, color.NRGBA{1, 2, 3, 4})
	assert.Equal(t, color.NRGBA{1, 2, 3, 4}, m.RGBA(0, 0))
	assert.Equal(t, color.NRGBA{1, 2, 3, 4}, m.At(0, 0))
}

func TestImageFill(t *testing.T) {
	m, err := NewImage(2, 1, RGB)
	require.NoError(t, err)
	m.Fill(color.NRGBA{0, 0, 0, 0xff})
	assert.Equal(t, []byte{0, 0, 0, 0xff, 0, 0, 0, 0xff}, m.Pix())

	g, err := NewImage(2, 1, Grayscale)
	require.NoError(t, err)
	g.Fill(color.NRGBA{0xff, 0xff, 0xff, 0x80})
	assert.Equal(t, []byte{0xff, 0x80, 0xff, 0x80}, g.Pix())

	g.Clear()
	assert.Equal(t, make([]byte, 4), g.Pix())
}

func TestImageCopyFrom(t *testing.T) {
	a, _ := NewImage(2, 2, Indexed)
	b, _ := NewImage(2, 2, Indexed)
	c, _ := NewImage(2, 2, RGB)

	a.SetIndex(0, 1, 4)
	a.SetMaskIndex(4)
	require.NoError(t, b.CopyFrom(a))
	assert.Equal(t, uint8(4), b.Index(0, 1))
	assert.Equal(t, uint8(4), b.MaskIndex())
	assert.Equal(t, ErrMismatch, c.CopyFrom(a))

	d := a.Clone()
	d.SetIndex(0, 1, 5)
	assert.Equal(t, uint8(4), a.Index(0, 1))
}

func TestIndexedAt(t *testing.T) {
	m, _ := NewImage(1, 1, Indexed)
	m.SetIndex(0, 0, 2)
	assert.Equal(t, color.Gray{Y: 2}, m.At(0, 0))

	p := NewPalette(3)
	require.NoError(t, p.SetEntry(2, color.RGBA{10, 20, 30, 0}))
	m.SetPalette(p)
	assert.Equal(t, color.RGBA{10, 20, 30, 0xff}, m.At(0, 0))
	assert.Equal(t, p.Colors(), m.ColorModel())
}

func TestPalette(t *testing.T) {
	p := NewPalette(2)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, color.RGBA{A: 0xff}, p.Entry(1))

	require.NoError(t, p.SetEntry(9, color.RGBA{1, 2, 3, 4}))
	assert.Equal(t, 10, p.Len())
	assert.Equal(t, color.RGBA{1, 2, 3, 0xff}, p.Entry(9))
	assert.Equal(t, color.RGBA{A: 0xff}, p.Entry(100))

	assert.Equal(t, ErrPaletteFull, p.SetEntry(256, color.RGBA{}))
	require.NoError(t, p.SetEntry(255, color.RGBA{}))
	assert.Equal(t, MaxColors, p.Len())

	p.Resize(4)
	assert.Equal(t, 4, p.Len())

	var nilPalette *Palette
	assert.Equal(t, 0, nilPalette.Len())
	assert.Equal(t, color.RGBA{A: 0xff}, nilPalette.Entry(0))
	assert.Nil(t, nilPalette.Clone())

	q := p.Clone()
	assert.True(t, p.Equal(q))
	require.NoError(t, q.SetEntry(0, color.RGBA{R: 1}))
	assert.False(t, p.Equal(q))
}

func TestPaletteOf(t *testing.T) {
	_, err := PaletteOf(make(color.Palette, 257))
	assert.Equal(t, ErrPaletteFull, err)

	p, err := PaletteOf(color.Palette{color.White, color.Black})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, p.Entry(0))
	assert.Equal(t, color.RGBA{0, 0, 0, 0xff}, p.Entry(1))
}

func TestGrayRamp(t *testing.T) {
	p := GrayRamp()
	assert.Equal(t, 256, p.Len())
	assert.Equal(t, color.RGBA{0x7f, 0x7f, 0x7f, 0xff}, p.Entry(0x7f))
}

func TestParsePixelFormat(t *testing.T) {
	for _, f := range []PixelFormat{RGB, Grayscale, Indexed} {
		got, ok := ParsePixelFormat(f.String())
		assert.True(t, ok)
		assert.Equal(t, f, got)
	}
	_, ok := ParsePixelFormat("cmyk")
	assert.False(t, ok)
}

func TestFromImagePaletted(t *testing.T) {
	cp := color.Palette{color.Black, color.White, color.RGBA{0xff, 0, 0, 0xff}}
	pm := image.NewPaletted(image.Rect(10, 10, 13, 11), cp)
	pm.SetColorIndex(12, 10, 2)

	m, p, err := FromImage(pm, Indexed)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Width())
	assert.Equal(t, 1, m.Height())
	assert.Equal(t, uint8(2), m.Index(2, 0))
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, color.RGBA{0xff, 0, 0, 0xff}, p.Entry(2))
}

func TestFromImageQuantize(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	src.Set(0, 0, color.NRGBA{0xff, 0, 0, 0xff})
	src.Set(1, 0, color.NRGBA{0, 0xff, 0, 0xff})
	src.Set(2, 0, color.NRGBA{0, 0, 0xff, 0xff})
	// (3, 0) is left fully transparent

	m, p, err := FromImage(src, Indexed)
	require.NoError(t, err)
	assert.LessOrEqual(t, p.Len(), MaxColors)
	assert.Equal(t, uint8(0), m.Index(3, 0))

	for x := 0; x < 3; x++ {
		i := m.Index(x, 0)
		assert.NotEqual(t, uint8(0), i)
		want := color.NRGBAModel.Convert(src.At(x, 0)).(color.NRGBA)
		got := p.Entry(int(i))
		assert.Equal(t, color.RGBA{want.R, want.G, want.B, 0xff}, got)
	}
}

func TestFromImageGrayscaleAndRGB(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.Set(0, 0, color.NRGBA{0xff, 0xff, 0xff, 0x40})

	g, p, err := FromImage(src, Grayscale)
	require.NoError(t, err)
	assert.Nil(t, p)
	v, a := g.Gray(0, 0)
	assert.Equal(t, uint8(0xff), v)
	assert.Equal(t, uint8(0x40), a)

	m, _, err := FromImage(src, RGB)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0xff, 0xff, 0xff, 0x40}, m.RGBA(0, 0))

	// Round trip through the image.Image implementation
	back, _, err := FromImage(m, RGB)
	require.NoError(t, err)
	assert.Equal(t, m.Pix(), back.Pix())
}

func TestFromImageIndexedRaster(t *testing.T) {
	m, _ := NewImage(2, 1, Indexed)
	m.SetIndex(1, 0, 200)

	dup, p, err := FromImage(m, Indexed)
	require.NoError(t, err)
	assert.Equal(t, m.Pix(), dup.Pix())
	assert.True(t, GrayRamp().Equal(p))
}

func TestPALRoundTrip(t *testing.T) {
	a := NewPalette(2)
	require.NoError(t, a.SetEntry(1, color.RGBA{0x11, 0x22, 0x33, 0}))
	b := GrayRamp()

	buf := new(bytes.Buffer)
	require.NoError(t, WritePAL(buf, a, b))

	assert.Equal(t, []byte("RIFF"), buf.Bytes()[0:4])
	assert.Equal(t, []byte("PAL data"), buf.Bytes()[8:16])

	pals, err := ReadPAL(buf)
	require.NoError(t, err)
	require.Len(t, pals, 2)
	assert.True(t, a.Equal(pals[0]))
	assert.True(t, b.Equal(pals[1]))
}

func TestReadPALRejectsOtherForms(t *testing.T) {
	b := []byte("RIFF\x04\x00\x00\x00WAVE")
	_, err := ReadPAL(bytes.NewReader(b))
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	indexed, _ := NewImage(1, 1, Indexed)

	tests := []struct {
		name string
		m    image.Image
		want PixelFormat
	}{
		{"paletted", image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.Black}), Indexed},
		{"gray", image.NewGray(image.Rect(0, 0, 1, 1)), Grayscale},
		{"gray16", image.NewGray16(image.Rect(0, 0, 1, 1)), Grayscale},
		{"nrgba", image.NewNRGBA(image.Rect(0, 0, 1, 1)), RGB},
		{"raster", indexed, Indexed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatOf(tt.m))
		})
	}
}

func TestStdImage(t *testing.T) {
	m, _ := NewImage(2, 1, Indexed)
	p := NewPalette(2)
	require.NoError(t, p.SetEntry(1, color.RGBA{0xff, 0, 0, 0xff}))
	m.SetPalette(p)
	m.SetIndex(1, 0, 1)

	pm, ok := m.StdImage().(*image.Paletted)
	require.True(t, ok)
	assert.Len(t, pm.Palette, MaxColors)
	assert.Equal(t, []byte{0, 1}, pm.Pix)

	g, _ := NewImage(2, 1, Grayscale)
	g.SetGray(0, 0, 0x40, 0xff)
	g.SetGray(1, 0, 0x80, 0xff)
	gm, ok := g.StdImage().(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, []byte{0x40, 0x80}, gm.Pix)

	g.SetGray(1, 0, 0x80, 0x10)
	nm, ok := g.StdImage().(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{0x80, 0x80, 0x80, 0x10}, nm.NRGBAAt(1, 0))

	rgb, _ := NewImage(1, 1, RGB)
	rgb.SetRGBA(0, 0, color.NRGBA{1, 2, 3, 4})
	rm, ok := rgb.StdImage().(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, rm.Pix)
}
