/*
Package ico implements a Windows icon (ICO) decoder and encoder.

An icon file starts with a six byte directory header followed by one
sixteen byte entry per embedded image. Each image is a BITMAPINFOHEADER
whose height covers both masks, an optional palette of B, G, R, pad quads,
the XOR (color) mask and the AND (transparency) mask. Both masks are
stored bottom-up with every row padded to a multiple of four bytes.

Only the first image of a file is decoded. When encoding, every frame of
the sprite becomes one embedded image; indexed sprites are written at 8 bits
per pixel and everything else at 24 bits per pixel. Icons are limited to
256 pixels in each dimension and larger sprites are not representable.
*/
package ico

import (
	"fmt"
	"image"

	"github.com/bodgit/spritefile/sprite"
)

const (
	formatName = "ico"

	typeIcon       = 1
	dirSize        = 6
	entrySize      = 16
	infoHeaderSize = 40
	paletteSize    = 256 * 4

	// "\x89PNG" read as a little-endian uint32
	pngMagic = 0x474e5089
)

// DirEntry is a single ICONDIRENTRY record.
type DirEntry struct {
	Width       uint8 // 0 means 256
	Height      uint8 // 0 means 256
	ColorCount  uint8
	Reserved    uint8
	Planes      uint16
	BitCount    uint16
	BytesInRes  uint32
	ImageOffset uint32
}

// Size returns the image dimensions the entry describes.
func (e DirEntry) Size() (int, int) {
	w, h := int(e.Width), int(e.Height)
	if w == 0 {
		w = 256
	}
	if h == 0 {
		h = 256
	}
	return w, h
}

type infoHeader struct {
	Size          uint32
	Width         uint32
	Height        uint32 // XOR height + AND height
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter uint32
	YPelsPerMeter uint32
	ClrUsed       uint32
	ClrImportant  uint32
}

func formatError(format string, a ...interface{}) error {
	return &sprite.FormatError{Format: formatName, Reason: fmt.Sprintf(format, a...)}
}

func ioError(op string, err error) error {
	return &sprite.IOError{Format: formatName, Op: op, Err: err}
}

// Row length in bytes of a bitmap row, padded to 32 bits
func rowBytes(width, bpp int) int {
	return (width*bpp + 31) / 32 * 4
}

func init() {
	image.RegisterFormat(formatName, "\x00\x00\x01\x00", Decode, DecodeConfig)
}
