package pcx

import (
	"image"
	"io"

	"github.com/bodgit/spritefile/raster"
	"github.com/bodgit/spritefile/sprite"
	"github.com/bodgit/spritefile/stream"
)

type encoder struct {
	w *stream.Writer
	m sprite.Monitor

	image   *raster.Image
	palette *raster.Palette
	planes  int
}

func (e *encoder) writeHeader() {
	width, height := e.image.Width(), e.image.Height()

	e.w.U8(manufacturer)
	e.w.U8(version)
	e.w.U8(encodingRLE)
	// Always 8, the planes field carries the real depth
	e.w.U8(bitsPerPlane)
	e.w.I16(0)
	e.w.I16(0)
	e.w.I16(int16(width - 1))
	e.w.I16(int16(height - 1))
	e.w.U16(320)
	e.w.U16(200)

	var ega [egaColors * 3]byte
	for i := 0; i < egaColors; i++ {
		c := e.palette.Entry(i)
		ega[i*3], ega[i*3+1], ega[i*3+2] = c.R, c.G, c.B
	}
	e.w.Write(ega[:])

	e.w.U8(0)
	e.w.U8(uint8(e.planes))
	e.w.U16(uint16(width))
	e.w.U16(1)
	e.w.U16(uint16(width))
	e.w.U16(uint16(height))
	e.w.Zero(headerSize - 74)
}

func (e *encoder) scanline(y int, line []byte) {
	width := e.image.Width()

	switch e.image.Format() {
	case raster.Indexed:
		copy(line, e.image.Row(y))
	case raster.Grayscale:
		for x := 0; x < width; x++ {
			line[x], _ = e.image.Gray(x, y)
		}
	case raster.RGB:
		for x := 0; x < width; x++ {
			c := e.image.RGBA(x, y)
			line[x], line[width+x], line[width*2+x] = c.R, c.G, c.B
		}
	}
}

func (e *encoder) writeImage() {
	width, height := e.image.Width(), e.image.Height()

	line := make([]byte, width*e.planes)
	var buf []byte
	for y := 0; y < height && e.w.Err() == nil; y++ {
		e.scanline(y, line)
		buf = appendRLE(buf[:0], line)
		e.w.Write(buf)

		e.m.Progress(float64(y+1) / float64(height))
	}
}

func (e *encoder) writePalette() {
	var rgb [1 + paletteColors*3]byte
	rgb[0] = paletteMarker
	for i := 0; i < paletteColors; i++ {
		c := e.palette.Entry(i)
		rgb[1+i*3], rgb[2+i*3], rgb[3+i*3] = c.R, c.G, c.B
	}
	e.w.Write(rgb[:])
}

func (e *encoder) encode() error {
	e.writeHeader()
	e.writeImage()
	if e.planes == 1 {
		e.writePalette()
	}

	if err := e.w.Err(); err != nil {
		return ioError("write", err)
	}
	return nil
}

// Write encodes the given frame of src. RGB sprites are written as three
// planes, Indexed and Grayscale sprites as a single plane followed by a
// 256 color palette. m may be nil.
func Write(w io.Writer, src sprite.Source, frame int, m sprite.Monitor) error {
	width, height := src.Width(), src.Height()
	if width < 1 || height < 1 || width > raster.MaxDimension || height > raster.MaxDimension {
		return formatError("cannot write %dx%d image", width, height)
	}

	img, err := raster.NewImage(width, height, src.PixelFormat())
	if err != nil {
		return formatError("%v", err)
	}
	if err := src.RenderFrame(frame, img); err != nil {
		return err
	}

	e := encoder{
		w:       stream.NewWriter(w),
		m:       sprite.MonitorOrNop(m),
		image:   img,
		palette: src.Palette(frame),
		planes:  1,
	}
	switch src.PixelFormat() {
	case raster.RGB:
		e.planes = 3
	case raster.Grayscale:
		if e.palette == nil {
			e.palette = raster.GrayRamp()
		}
	}

	return e.encode()
}

// Encode writes the Image m to w in PCX format.
func Encode(w io.Writer, m image.Image) error {
	dst, p, err := raster.FromImage(m, raster.FormatOf(m))
	if err != nil {
		return err
	}
	s, err := sprite.FromFrames(sprite.Frame{Image: dst, Palette: p})
	if err != nil {
		return err
	}
	return Write(w, s, 0, nil)
}
