package ico

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/bodgit/spritefile/raster"
	"github.com/bodgit/spritefile/sprite"
	"github.com/bodgit/spritefile/stream"
)

type decoder struct {
	r *stream.Reader
	m sprite.Monitor

	entries []DirEntry
	info    infoHeader

	width, height int
	bpp           int
	colors        int
	format        raster.PixelFormat

	palette *raster.Palette
	image   *raster.Image

	// Set when the image data is an embedded PNG
	png bool
}

func (d *decoder) readDirectory() error {
	d.r.U16() // reserved
	typ := d.r.U16()
	count := d.r.U16()
	if err := d.r.Err(); err != nil {
		return ioError("read header", err)
	}

	if typ != typeIcon {
		return formatError("not an icon (resource type %d)", typ)
	}
	if count < 1 {
		return formatError("no images")
	}

	d.entries = make([]DirEntry, count)
	for i := range d.entries {
		e := &d.entries[i]
		e.Width = d.r.U8()
		e.Height = d.r.U8()
		e.ColorCount = d.r.U8()
		e.Reserved = d.r.U8()
		e.Planes = d.r.U16()
		e.BitCount = d.r.U16()
		e.BytesInRes = d.r.U32()
		e.ImageOffset = d.r.U32()
	}
	if err := d.r.Err(); err != nil {
		return ioError("read directory", err)
	}

	return nil
}

func (d *decoder) readInfoHeader(e DirEntry, configOnly bool) error {
	ok, err := d.r.SkipTo(int64(e.ImageOffset))
	if err != nil {
		return ioError("seek to image", err)
	}
	if !ok {
		return formatError("image offset %d overlaps directory", e.ImageOffset)
	}

	d.info.Size = d.r.U32()
	if err := d.r.Err(); err != nil {
		return ioError("read bitmap header", err)
	}

	if d.info.Size == pngMagic {
		return d.readPNG(configOnly)
	}

	if d.info.Size < infoHeaderSize {
		return formatError("bitmap header size %d", d.info.Size)
	}

	d.info.Width = d.r.U32()
	d.info.Height = d.r.U32()
	d.info.Planes = d.r.U16()
	d.info.BitCount = d.r.U16()
	d.info.Compression = d.r.U32()
	d.info.SizeImage = d.r.U32()
	d.info.XPelsPerMeter = d.r.U32()
	d.info.YPelsPerMeter = d.r.U32()
	d.info.ClrUsed = d.r.U32()
	d.info.ClrImportant = d.r.U32()
	if err := d.r.Skip(int64(d.info.Size - infoHeaderSize)); err != nil {
		return ioError("read bitmap header", err)
	}

	d.bpp = int(e.BitCount)
	if d.bpp == 0 {
		d.bpp = int(d.info.BitCount)
	}

	switch d.bpp {
	case 1, 4, 8:
		d.format = raster.Indexed
		d.colors = int(e.ColorCount)
		if d.colors == 0 {
			d.colors = 1 << uint(d.bpp)
		}
	case 24, 32:
		d.format = raster.RGB
	default:
		return formatError("unsupported bits per pixel (%d)", d.bpp)
	}

	return nil
}

func (d *decoder) readPNG(configOnly bool) error {
	var sig [4]byte
	binary.LittleEndian.PutUint32(sig[:], pngMagic)
	r := io.MultiReader(bytes.NewReader(sig[:]), d.r.Source())

	// Keep what DecodeConfig consumes so Decode can replay it
	head := new(bytes.Buffer)
	cfg, err := png.DecodeConfig(io.TeeReader(r, head))
	if err != nil {
		return formatError("embedded PNG: %v", err)
	}
	if cfg.Width*cfg.Height > raster.MaxPixels {
		return formatError("embedded PNG is %dx%d", cfg.Width, cfg.Height)
	}

	d.format = raster.RGB
	d.width, d.height = cfg.Width, cfg.Height
	if configOnly {
		return nil
	}

	m, err := png.Decode(io.MultiReader(head, r))
	if err != nil {
		return formatError("embedded PNG: %v", err)
	}
	if d.image, _, err = raster.FromImage(m, raster.RGB); err != nil {
		return formatError("embedded PNG: %v", err)
	}
	d.width, d.height = d.image.Width(), d.image.Height()
	d.png = true
	return nil
}

func (d *decoder) readPalette() error {
	d.palette = raster.NewPalette(d.colors)

	var quad [4]byte
	for i := 0; i < d.colors; i++ {
		if err := d.r.Read(quad[:]); err != nil {
			return ioError("read palette", err)
		}
		d.palette.SetEntry(i, color.RGBA{quad[2], quad[1], quad[0], 0xff})
	}
	return nil
}

func (d *decoder) readXORMask() error {
	row := make([]byte, rowBytes(d.width, d.bpp))

	for y := d.height - 1; y >= 0; y-- {
		if err := d.r.Read(row); err != nil {
			return ioError("read color mask", err)
		}

		switch d.bpp {
		case 1, 4, 8:
			mask := byte(1<<uint(d.bpp) - 1)
			for x := 0; x < d.width; x++ {
				bit := x * d.bpp
				c := row[bit>>3] >> uint(8-d.bpp-bit&7) & mask
				if int(c) >= d.colors {
					c = 0
				}
				d.image.SetIndex(x, y, c)
			}
		case 24:
			for x := 0; x < d.width; x++ {
				s := row[x*3 : x*3+3]
				d.image.SetRGBA(x, y, color.NRGBA{s[2], s[1], s[0], 0xff})
			}
		case 32:
			for x := 0; x < d.width; x++ {
				s := row[x*4 : x*4+4]
				d.image.SetRGBA(x, y, color.NRGBA{s[2], s[1], s[0], s[3]})
			}
		}

		d.m.Progress(float64(d.height-y) / float64(2*d.height))
	}
	return nil
}

func (d *decoder) readANDMask() error {
	row := make([]byte, rowBytes(d.width, 1))

	for y := d.height - 1; y >= 0; y-- {
		if err := d.r.Read(row); err != nil {
			return ioError("read transparency mask", err)
		}

		for x := 0; x < d.width; x++ {
			if row[x>>3]&(0x80>>uint(x&7)) == 0 {
				continue
			}
			if d.format == raster.Indexed {
				d.image.SetIndex(x, y, 0)
			} else {
				d.image.SetRGBA(x, y, color.NRGBA{})
			}
		}

		d.m.Progress(float64(2*d.height-y) / float64(2*d.height))
	}
	return nil
}

func (d *decoder) decode(r io.Reader, m sprite.Monitor, configOnly bool) error {
	d.r = stream.NewReader(r)
	d.m = sprite.MonitorOrNop(m)

	if err := d.readDirectory(); err != nil {
		return err
	}

	// Multi-resolution icons are not imported as frames; only the first
	// image is read.
	e := d.entries[0]
	d.width, d.height = e.Size()

	if err := d.readInfoHeader(e, configOnly); err != nil {
		return err
	}
	if d.png || (configOnly && d.format == raster.RGB) {
		return nil
	}

	if d.format == raster.Indexed {
		if err := d.readPalette(); err != nil {
			return err
		}
	}
	if configOnly {
		return nil
	}

	var err error
	if d.image, err = raster.NewImage(d.width, d.height, d.format); err != nil {
		return formatError("%v", err)
	}
	d.image.SetPalette(d.palette)

	if err := d.readXORMask(); err != nil {
		return err
	}
	return d.readANDMask()
}

func (d *decoder) sprite() (*sprite.Sprite, error) {
	return sprite.FromFrames(sprite.Frame{Image: d.image, Palette: d.palette})
}

// Read decodes the first image of an icon file into a single frame sprite.
// m may be nil.
func Read(r io.Reader, m sprite.Monitor) (*sprite.Sprite, error) {
	var d decoder
	if err := d.decode(r, m, false); err != nil {
		return nil, err
	}
	return d.sprite()
}

// ReadDirectory returns the directory entries of an icon file without
// decoding any image.
func ReadDirectory(r io.Reader) ([]DirEntry, error) {
	d := decoder{r: stream.NewReader(r)}
	if err := d.readDirectory(); err != nil {
		return nil, err
	}
	return d.entries, nil
}

// Decode reads the first image of an icon file and returns it as an
// image.Image.
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

// DecodeConfig returns the color model and dimensions of the first image
// of an icon file without decoding it.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, nil, true); err != nil {
		return image.Config{}, err
	}

	var model color.Model = color.NRGBAModel
	if d.palette != nil {
		model = d.palette.Colors()
	}
	return image.Config{
		ColorModel: model,
		Width:      d.width,
		Height:     d.height,
	}, nil
}
