package raster

import (
	"errors"
	"image/color"
)

// MaxColors is the largest number of entries a Palette holds.
const MaxColors = 256

// ErrPaletteFull is returned when an entry beyond MaxColors is addressed.
var ErrPaletteFull = errors.New("raster: palette holds at most 256 colors")

// Palette is an ordered table of opaque colors used by Indexed images.
// A nil *Palette behaves as an empty palette.
type Palette struct {
	entries []color.RGBA
}

func opaque(c color.RGBA) color.RGBA {
	c.A = 0xff
	return c
}

// NewPalette returns a palette of n opaque black entries. n is clamped to
// the range 0 to MaxColors.
func NewPalette(n int) *Palette {
	if n < 0 {
		n = 0
	}
	if n > MaxColors {
		n = MaxColors
	}
	p := &Palette{entries: make([]color.RGBA, n)}
	for i := range p.entries {
		p.entries[i].A = 0xff
	}
	return p
}

// GrayRamp returns a 256 entry palette where entry i is gray level i.
func GrayRamp() *Palette {
	p := NewPalette(MaxColors)
	for i := range p.entries {
		p.entries[i] = color.RGBA{uint8(i), uint8(i), uint8(i), 0xff}
	}
	return p
}

// PaletteOf converts a color.Palette.
func PaletteOf(cp color.Palette) (*Palette, error) {
	if len(cp) > MaxColors {
		return nil, ErrPaletteFull
	}
	p := NewPalette(len(cp))
	for i, c := range cp {
		p.entries[i] = opaque(color.RGBAModel.Convert(c).(color.RGBA))
	}
	return p, nil
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Entry returns entry i, or opaque black if i is out of range.
func (p *Palette) Entry(i int) color.RGBA {
	if p == nil || i < 0 || i >= len(p.entries) {
		return color.RGBA{A: 0xff}
	}
	return p.entries[i]
}

// SetEntry sets entry i, growing the palette with black entries if
// needed. The alpha of c is ignored.
func (p *Palette) SetEntry(i int, c color.RGBA) error {
	if i < 0 || i >= MaxColors {
		return ErrPaletteFull
	}
	if i >= len(p.entries) {
		p.Resize(i + 1)
	}
	p.entries[i] = opaque(c)
	return nil
}

// Resize truncates or grows the palette to n entries.
func (p *Palette) Resize(n int) {
	if n < 0 {
		n = 0
	}
	if n > MaxColors {
		n = MaxColors
	}
	for len(p.entries) < n {
		p.entries = append(p.entries, color.RGBA{A: 0xff})
	}
	p.entries = p.entries[:n]
}

// Clone returns a copy of the palette.
func (p *Palette) Clone() *Palette {
	if p == nil {
		return nil
	}
	return &Palette{entries: append([]color.RGBA(nil), p.entries...)}
}

// Colors returns the palette as a color.Palette.
func (p *Palette) Colors() color.Palette {
	cp := make(color.Palette, p.Len())
	for i := range cp {
		cp[i] = p.entries[i]
	}
	return cp
}

// Equal reports whether both palettes hold the same entries.
func (p *Palette) Equal(o *Palette) bool {
	if p.Len() != o.Len() {
		return false
	}
	for i := 0; i < p.Len(); i++ {
		if p.entries[i] != o.entries[i] {
			return false
		}
	}
	return true
}
