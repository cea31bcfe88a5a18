package ico

import (
	"errors"
	"image"
	"io"

	"github.com/bodgit/spritefile/raster"
	"github.com/bodgit/spritefile/sprite"
	"github.com/bodgit/spritefile/stream"
)

var errTooManyFrames = errors.New("ico: too many frames")

type encoder struct {
	w   *stream.Writer
	src sprite.Source
	m   sprite.Monitor

	bpp       int
	colorRow  int
	maskRow   int
	imageSize int
}

func (e *encoder) layout() {
	width, height := e.src.Width(), e.src.Height()

	e.bpp = 24
	if e.src.PixelFormat() == raster.Indexed {
		e.bpp = 8
	}
	e.colorRow = rowBytes(width, e.bpp)
	e.maskRow = rowBytes(width, 1)
	e.imageSize = height*(e.colorRow+e.maskRow) + infoHeaderSize
	if e.bpp == 8 {
		e.imageSize += paletteSize
	}
}

func (e *encoder) writeDirectory(frames int) {
	e.w.U16(0)
	e.w.U16(typeIcon)
	e.w.U16(uint16(frames))

	offset := dirSize + frames*entrySize
	for n := 0; n < frames; n++ {
		// Dimensions of 256 and above do not fit and wrap around
		e.w.U8(uint8(e.src.Width()))
		e.w.U8(uint8(e.src.Height()))
		e.w.U8(0) // color count
		e.w.U8(0) // reserved
		e.w.U16(1)
		e.w.U16(uint16(e.bpp))
		e.w.U32(uint32(e.imageSize))
		e.w.U32(uint32(offset))

		offset += e.imageSize
	}
}

func (e *encoder) writeInfoHeader(m *raster.Image) {
	e.w.U32(infoHeaderSize)
	e.w.U32(uint32(m.Width()))
	e.w.U32(uint32(m.Height() * 2))
	e.w.U16(1)
	e.w.U16(uint16(e.bpp))
	e.w.U32(0)
	e.w.U32(uint32(e.imageSize))
	e.w.U32(0)
	e.w.U32(0)
	e.w.U32(0)
	e.w.U32(0)
}

func (e *encoder) writePalette(p *raster.Palette) {
	buf := make([]byte, paletteSize)

	// Entry 0 stays black so the XOR mask composites correctly over the
	// transparent area
	for i := 1; i < paletteSize/4; i++ {
		c := p.Entry(i)
		buf[i*4], buf[i*4+1], buf[i*4+2] = c.B, c.G, c.R
	}
	e.w.Write(buf)
}

func (e *encoder) writeXORMask(m *raster.Image) {
	row := make([]byte, e.colorRow)

	for y := m.Height() - 1; y >= 0; y-- {
		for x := 0; x < m.Width(); x++ {
			switch m.Format() {
			case raster.RGB:
				c := m.RGBA(x, y)
				row[x*3], row[x*3+1], row[x*3+2] = c.B, c.G, c.R
			case raster.Grayscale:
				v, _ := m.Gray(x, y)
				row[x*3], row[x*3+1], row[x*3+2] = v, v, v
			case raster.Indexed:
				row[x] = m.Index(x, y)
			}
		}
		e.w.Write(row)
	}
}

func (e *encoder) writeANDMask(m *raster.Image) {
	row := make([]byte, e.maskRow)

	for y := m.Height() - 1; y >= 0; y-- {
		for i := range row {
			row[i] = 0
		}
		for x := 0; x < m.Width(); x++ {
			var transparent bool
			switch m.Format() {
			case raster.RGB:
				transparent = m.RGBA(x, y).A == 0
			case raster.Grayscale:
				_, a := m.Gray(x, y)
				transparent = a == 0
			case raster.Indexed:
				// Index 0 is always the background
				transparent = m.Index(x, y) == 0
			}
			if transparent {
				row[x>>3] |= 0x80 >> uint(x&7)
			}
		}
		e.w.Write(row)
	}
}

func (e *encoder) encode() error {
	frames := e.src.FrameCount()
	if frames > 0xffff {
		return errTooManyFrames
	}

	e.layout()
	e.writeDirectory(frames)

	m, err := raster.NewImage(e.src.Width(), e.src.Height(), e.src.PixelFormat())
	if err != nil {
		return err
	}

	for n := 0; n < frames; n++ {
		m.Clear()
		if err := e.src.RenderFrame(n, m); err != nil {
			return err
		}

		e.writeInfoHeader(m)
		if e.bpp == 8 {
			e.writePalette(e.src.Palette(n))
		}
		e.writeXORMask(m)
		e.writeANDMask(m)

		if err := e.w.Err(); err != nil {
			return ioError("write", err)
		}
		e.m.Progress(float64(n+1) / float64(frames))
	}

	if err := e.w.Err(); err != nil {
		return ioError("write", err)
	}
	return nil
}

// Write encodes every frame of src as one image of an icon file. m may be
// nil.
func Write(w io.Writer, src sprite.Source, m sprite.Monitor) error {
	if src.FrameCount() < 1 {
		return errors.New("ico: sprite has no frames")
	}
	e := encoder{
		w:   stream.NewWriter(w),
		src: src,
		m:   sprite.MonitorOrNop(m),
	}
	return e.encode()
}

// Encode writes the Image m to w in ICO format. Paletted images are
// written at 8 bits per pixel and everything else at 24 bits per pixel.
func Encode(w io.Writer, m image.Image) error {
	dst, p, err := raster.FromImage(m, raster.FormatOf(m))
	if err != nil {
		return err
	}
	s, err := sprite.FromFrames(sprite.Frame{Image: dst, Palette: p})
	if err != nil {
		return err
	}
	return Write(w, s, nil)
}
