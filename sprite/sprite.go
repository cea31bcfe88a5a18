/*
Package sprite implements the document model the sprite file codecs load
into and save from.

A Sprite is a fixed-size, single-layer sequence of frames. Every frame owns
an image in the sprite's pixel format and may carry its own palette.
*/
package sprite

import (
	"errors"
	"fmt"

	"github.com/bodgit/spritefile/raster"
)

var (
	errNoFrames    = errors.New("sprite: no frames")
	errFrameRange  = errors.New("sprite: frame out of range")
	errFrameFormat = errors.New("sprite: frame does not match sprite")
)

// Source is the read-only view of a sprite that encoders consume.
type Source interface {
	Width() int
	Height() int
	PixelFormat() raster.PixelFormat
	FrameCount() int

	// RenderFrame composites frame n into dst, which must match the
	// sprite dimensions and pixel format.
	RenderFrame(n int, dst *raster.Image) error

	// Palette returns the palette in effect for frame n, or nil.
	Palette(n int) *raster.Palette
}

// Frame is a single image of a sprite together with its palette.
type Frame struct {
	Image   *raster.Image
	Palette *raster.Palette
}

// Sprite is a sequence of frames sharing dimensions and pixel format.
type Sprite struct {
	width  int
	height int
	format raster.PixelFormat
	frames []Frame
}

// New returns a sprite with one blank frame. Indexed sprites start with a
// 256 entry black palette.
func New(width, height int, format raster.PixelFormat) (*Sprite, error) {
	s := &Sprite{
		width:  width,
		height: height,
		format: format,
	}
	if _, err := s.AddFrame(); err != nil {
		return nil, err
	}
	return s, nil
}

// FromFrames builds a sprite from existing frames, which must all have the
// same dimensions and pixel format.
func FromFrames(frames ...Frame) (*Sprite, error) {
	if len(frames) == 0 {
		return nil, errNoFrames
	}
	first := frames[0].Image
	s := &Sprite{
		width:  first.Width(),
		height: first.Height(),
		format: first.Format(),
	}
	for _, f := range frames {
		if err := s.check(f.Image); err != nil {
			return nil, err
		}
		if f.Palette != nil {
			f.Image.SetPalette(f.Palette)
		}
		s.frames = append(s.frames, f)
	}
	return s, nil
}

func (s *Sprite) check(m *raster.Image) error {
	if m == nil || m.Width() != s.width || m.Height() != s.height || m.Format() != s.format {
		return errFrameFormat
	}
	return nil
}

// Width returns the sprite width in pixels.
func (s *Sprite) Width() int { return s.width }

// Height returns the sprite height in pixels.
func (s *Sprite) Height() int { return s.height }

// PixelFormat returns the pixel format shared by every frame.
func (s *Sprite) PixelFormat() raster.PixelFormat { return s.format }

// FrameCount returns the number of frames.
func (s *Sprite) FrameCount() int { return len(s.frames) }

// Frame returns frame n.
func (s *Sprite) Frame(n int) (Frame, error) {
	if n < 0 || n >= len(s.frames) {
		return Frame{}, errFrameRange
	}
	return s.frames[n], nil
}

// AddFrame appends a blank frame and returns its image. The new frame
// inherits the palette of the previous one.
func (s *Sprite) AddFrame() (*raster.Image, error) {
	m, err := raster.NewImage(s.width, s.height, s.format)
	if err != nil {
		return nil, err
	}

	var p *raster.Palette
	switch {
	case len(s.frames) > 0:
		p = s.frames[len(s.frames)-1].Palette.Clone()
	case s.format == raster.Indexed:
		p = raster.NewPalette(raster.MaxColors)
	}
	m.SetPalette(p)

	s.frames = append(s.frames, Frame{Image: m, Palette: p})
	return m, nil
}

// RenderFrame implements Source.
func (s *Sprite) RenderFrame(n int, dst *raster.Image) error {
	if n < 0 || n >= len(s.frames) {
		return errFrameRange
	}
	if err := s.check(dst); err != nil {
		return err
	}
	dst.Clear()
	return dst.CopyFrom(s.frames[n].Image)
}

// Palette implements Source.
func (s *Sprite) Palette(n int) *raster.Palette {
	if n < 0 || n >= len(s.frames) {
		return nil
	}
	return s.frames[n].Palette
}

// SetPalette replaces the palette of frame n.
func (s *Sprite) SetPalette(n int, p *raster.Palette) error {
	if n < 0 || n >= len(s.frames) {
		return errFrameRange
	}
	s.frames[n].Palette = p
	s.frames[n].Image.SetPalette(p)
	return nil
}

// Convert returns a copy of s with every frame converted to format.
func Convert(s Source, format raster.PixelFormat) (*Sprite, error) {
	frames := make([]Frame, 0, s.FrameCount())
	for n := 0; n < s.FrameCount(); n++ {
		m, err := raster.NewImage(s.Width(), s.Height(), s.PixelFormat())
		if err != nil {
			return nil, err
		}
		if err := s.RenderFrame(n, m); err != nil {
			return nil, fmt.Errorf("sprite: frame %d: %w", n, err)
		}
		m.SetPalette(s.Palette(n))

		dst, p, err := raster.FromImage(m, format)
		if err != nil {
			return nil, fmt.Errorf("sprite: frame %d: %w", n, err)
		}
		frames = append(frames, Frame{Image: dst, Palette: p})
	}
	return FromFrames(frames...)
}
