package spritefile

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bodgit/spritefile/ico"
	"github.com/bodgit/spritefile/pcx"
	"github.com/bodgit/spritefile/raster"
	"github.com/bodgit/spritefile/sprite"
	"golang.org/x/image/bmp"
)

// Flags describe what a Format can do.
type Flags uint

const (
	FlagLoad Flags = 1 << iota
	FlagSave
	FlagRGB
	FlagGrayscale
	FlagIndexed
	// FlagFrames means every frame is saved to the same file.
	FlagFrames
	// FlagSequences means each frame is saved to its own numbered file.
	FlagSequences
	// FlagStoppable means Read stops early, returning a partial image,
	// once the Monitor reports Stopped.
	FlagStoppable
)

// ErrUnknownFormat is returned when no Format matches a filename.
var ErrUnknownFormat = errors.New("spritefile: unknown format")

// Format describes a file format and the codec that reads and writes it.
type Format struct {
	Name       string
	Extensions []string
	Flags      Flags

	// Largest width or height the format can represent, 0 if unlimited
	MaxDimension int

	Read  func(io.Reader, sprite.Monitor) (*sprite.Sprite, error)
	Write func(io.Writer, sprite.Source, int, sprite.Monitor) error
}

// Has reports whether all of flags are set.
func (f *Format) Has(flags Flags) bool {
	return f.Flags&flags == flags
}

// Supports reports whether the format can save sprites of pixel format pf.
func (f *Format) Supports(pf raster.PixelFormat) bool {
	switch pf {
	case raster.RGB:
		return f.Has(FlagRGB)
	case raster.Grayscale:
		return f.Has(FlagGrayscale)
	case raster.Indexed:
		return f.Has(FlagIndexed)
	}
	return false
}

var (
	formatsMu sync.RWMutex
	formats   = make(map[string]*Format)
)

// Register adds f to the registry, replacing any format of the same name.
func Register(f *Format) {
	formatsMu.Lock()
	defer formatsMu.Unlock()
	formats[f.Name] = f
}

// Lookup returns the format registered under name.
func Lookup(name string) (*Format, bool) {
	formatsMu.RLock()
	defer formatsMu.RUnlock()
	f, ok := formats[name]
	return f, ok
}

// ForFilename returns the format matching the extension of file, ignoring
// case.
func ForFilename(file string) (*Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file), "."))
	if ext == "" {
		return nil, ErrUnknownFormat
	}

	formatsMu.RLock()
	defer formatsMu.RUnlock()
	for _, f := range formats {
		for _, e := range f.Extensions {
			if e == ext {
				return f, nil
			}
		}
	}
	return nil, ErrUnknownFormat
}

// Formats returns every registered format sorted by name.
func Formats() []*Format {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	list := make([]*Format, 0, len(formats))
	for _, f := range formats {
		list = append(list, f)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

var errTooLarge = errors.New("spritefile: image too large")

func readStd(decode func(io.Reader) (image.Image, error), decodeConfig func(io.Reader) (image.Config, error)) func(io.Reader, sprite.Monitor) (*sprite.Sprite, error) {
	return func(r io.Reader, m sprite.Monitor) (*sprite.Sprite, error) {
		head := new(bytes.Buffer)
		cfg, err := decodeConfig(io.TeeReader(r, head))
		if err != nil {
			return nil, err
		}
		if cfg.Width*cfg.Height > raster.MaxPixels {
			return nil, fmt.Errorf("%w: %dx%d", errTooLarge, cfg.Width, cfg.Height)
		}

		src, err := decode(io.MultiReader(head, r))
		if err != nil {
			return nil, err
		}
		img, p, err := raster.FromImage(src, raster.FormatOf(src))
		if err != nil {
			return nil, err
		}
		sprite.MonitorOrNop(m).Progress(1)
		return sprite.FromFrames(sprite.Frame{Image: img, Palette: p})
	}
}

func writeStd(encode func(io.Writer, image.Image) error) func(io.Writer, sprite.Source, int, sprite.Monitor) error {
	return func(w io.Writer, s sprite.Source, n int, m sprite.Monitor) error {
		img, err := raster.NewImage(s.Width(), s.Height(), s.PixelFormat())
		if err != nil {
			return err
		}
		if err := s.RenderFrame(n, img); err != nil {
			return err
		}
		img.SetPalette(s.Palette(n))

		if err := encode(w, img.StdImage()); err != nil {
			return err
		}
		sprite.MonitorOrNop(m).Progress(1)
		return nil
	}
}

func init() {
	const all = FlagLoad | FlagSave | FlagRGB | FlagGrayscale | FlagIndexed

	Register(&Format{
		Name:         "ico",
		Extensions:   []string{"ico"},
		Flags:        all | FlagFrames,
		MaxDimension: 255,
		Read:         ico.Read,
		Write: func(w io.Writer, s sprite.Source, _ int, m sprite.Monitor) error {
			return ico.Write(w, s, m)
		},
	})
	Register(&Format{
		Name:       "pcx",
		Extensions: []string{"pcx"},
		Flags:      all | FlagSequences | FlagStoppable,
		Read:       pcx.Read,
		Write:      pcx.Write,
	})
	Register(&Format{
		Name:       "png",
		Extensions: []string{"png"},
		Flags:      all | FlagSequences,
		Read:       readStd(png.Decode, png.DecodeConfig),
		Write:      writeStd(png.Encode),
	})
	Register(&Format{
		Name:       "bmp",
		Extensions: []string{"bmp"},
		Flags:      all | FlagSequences,
		Read:       readStd(bmp.Decode, bmp.DecodeConfig),
		Write:      writeStd(bmp.Encode),
	})
}
