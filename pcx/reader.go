package pcx

import (
	"image"
	"image/color"
	"io"

	"github.com/bodgit/spritefile/raster"
	"github.com/bodgit/spritefile/sprite"
	"github.com/bodgit/spritefile/stream"
)

type decoder struct {
	r *stream.Reader
	m sprite.Monitor

	h header

	width, height int
	depth         int
	bytesPerLine  int

	palette *raster.Palette
	image   *raster.Image
}

func (d *decoder) readHeader() error {
	h := &d.h

	h.Manufacturer = d.r.U8()
	h.Version = d.r.U8()
	h.Encoding = d.r.U8()
	h.BitsPerPlane = d.r.U8()
	if err := d.r.Err(); err != nil {
		return ioError("read header", err)
	}
	if h.BitsPerPlane != bitsPerPlane {
		return formatError("%d bits per plane", h.BitsPerPlane)
	}

	h.XMin = d.r.I16()
	h.YMin = d.r.I16()
	h.XMax = d.r.I16()
	h.YMax = d.r.I16()
	h.HDPI = d.r.U16()
	h.VDPI = d.r.U16()
	d.r.Read(h.EGA[:])
	h.Reserved = d.r.U8()
	h.Planes = d.r.U8()
	h.BytesPerLine = d.r.U16()
	h.PaletteInfo = d.r.U16()
	h.HScreen = d.r.U16()
	h.VScreen = d.r.U16()
	if err := d.r.Skip(headerSize - d.r.Offset()); err != nil {
		return ioError("read header", err)
	}

	d.width = int(h.XMax) - int(h.XMin) + 1
	d.height = int(h.YMax) - int(h.YMin) + 1
	if d.width < 1 || d.height < 1 {
		return formatError("image window %d,%d-%d,%d", h.XMin, h.YMin, h.XMax, h.YMax)
	}
	if d.width > raster.MaxDimension || d.height > raster.MaxDimension {
		return formatError("image is %dx%d", d.width, d.height)
	}

	d.depth = int(h.Planes) * bitsPerPlane
	if d.depth != 8 && d.depth != 24 {
		return formatError("%d bit color depth", d.depth)
	}
	if d.width*d.height*int(h.Planes) > raster.MaxPixels {
		return formatError("image is %dx%d with %d planes", d.width, d.height, h.Planes)
	}

	d.bytesPerLine = int(h.BytesPerLine)
	if d.bytesPerLine < d.width {
		return formatError("%d bytes per line for %d pixels", d.bytesPerLine, d.width)
	}

	d.palette = raster.NewPalette(paletteColors)
	for i := 0; i < egaColors; i++ {
		d.palette.SetEntry(i, color.RGBA{h.EGA[i*3], h.EGA[i*3+1], h.EGA[i*3+2], 0xff})
	}

	return nil
}

func (d *decoder) format() raster.PixelFormat {
	if d.depth == 8 {
		return raster.Indexed
	}
	return raster.RGB
}

func (d *decoder) readImage() error {
	var err error
	if d.image, err = raster.NewImage(d.width, d.height, d.format()); err != nil {
		return formatError("%v", err)
	}
	if d.depth == 24 {
		d.image.Fill(color.NRGBA{A: 0xff})
	}

	planes := d.depth / bitsPerPlane
	line := make([]byte, d.bytesPerLine*planes)

	for y := 0; y < d.height; y++ {
		if err := readRLE(d.r, line); err != nil {
			return ioError("read scanline", err)
		}

		if d.depth == 8 {
			copy(d.image.Row(y), line[:d.width])
		} else {
			r := line
			g := line[d.bytesPerLine:]
			b := line[d.bytesPerLine*2:]
			for x := 0; x < d.width; x++ {
				d.image.SetRGBA(x, y, color.NRGBA{r[x], g[x], b[x], 0xff})
			}
		}

		d.m.Progress(float64(y+1) / float64(d.height))
		if d.m.Stopped() {
			return nil
		}
	}

	if d.depth == 8 {
		return d.readPalette()
	}
	return nil
}

func (d *decoder) readPalette() error {
	for {
		c, err := d.r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return ioError("read palette", err)
		}
		if c == paletteMarker {
			break
		}
	}

	var rgb [paletteColors * 3]byte
	if err := d.r.Read(rgb[:]); err != nil {
		return ioError("read palette", err)
	}
	for i := 0; i < paletteColors; i++ {
		d.palette.SetEntry(i, color.RGBA{rgb[i*3], rgb[i*3+1], rgb[i*3+2], 0xff})
	}
	return nil
}

func (d *decoder) decode(r io.Reader, m sprite.Monitor, configOnly bool) error {
	d.r = stream.NewReader(r)
	d.m = sprite.MonitorOrNop(m)

	if err := d.readHeader(); err != nil {
		return err
	}
	if configOnly {
		return nil
	}
	return d.readImage()
}

// Read decodes a PCX image into a single frame sprite. Decoding checks
// m.Stopped after every scanline; if it returns true the sprite is
// returned with the remaining scanlines left blank and no error. m may be
// nil.
func Read(r io.Reader, m sprite.Monitor) (*sprite.Sprite, error) {
	var d decoder
	if err := d.decode(r, m, false); err != nil {
		return nil, err
	}

	f := sprite.Frame{Image: d.image}
	if d.depth == 8 {
		f.Palette = d.palette
	}
	return sprite.FromFrames(f)
}

// Decode reads a PCX image from r and returns it as an image.Image.
func Decode(r io.Reader) (image.Image, error) {
	s, err := Read(r, nil)
	if err != nil {
		return nil, err
	}
	f, err := s.Frame(0)
	if err != nil {
		return nil, err
	}
	return f.Image, nil
}

// DecodeConfig returns the color model and dimensions of a PCX image
// without decoding the entire image. The color model of an 8-bit image
// only has the 16 header colors as the full palette follows the image
// data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, nil, true); err != nil {
		return image.Config{}, err
	}

	var model color.Model = color.NRGBAModel
	if d.depth == 8 {
		model = d.palette.Colors()
	}
	return image.Config{
		ColorModel: model,
		Width:      d.width,
		Height:     d.height,
	}, nil
}
