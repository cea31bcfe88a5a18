/*
Package pcx implements a ZSoft PCX decoder and encoder.

Only files with 8 bits per plane are supported, either a single plane of
palette indices or three planes of red, green and blue samples. Every
scanline is run-length encoded. 8-bit files carry a 16 color palette in the
header and usually a 256 color palette after the image data, introduced by
a marker byte of 12.

Grayscale sprites are written as 8-bit files with a linear gray palette.
*/
package pcx

import (
	"fmt"
	"image"

	"github.com/bodgit/spritefile/sprite"
)

const (
	formatName = "pcx"

	manufacturer = 10
	version      = 5
	encodingRLE  = 1
	bitsPerPlane = 8

	headerSize    = 128
	egaColors     = 16
	paletteMarker = 12
	paletteColors = 256

	runFlag = 0xc0
	maxRun  = 0x3f
)

type header struct {
	Manufacturer uint8
	Version      uint8
	Encoding     uint8
	BitsPerPlane uint8
	XMin, YMin   int16
	XMax, YMax   int16
	HDPI, VDPI   uint16
	EGA          [egaColors * 3]byte
	Reserved     uint8
	Planes       uint8
	BytesPerLine uint16
	PaletteInfo  uint16
	HScreen      uint16
	VScreen      uint16
}

func formatError(format string, a ...interface{}) error {
	return &sprite.FormatError{Format: formatName, Reason: fmt.Sprintf(format, a...)}
}

func ioError(op string, err error) error {
	return &sprite.IOError{Format: formatName, Op: op, Err: err}
}

func init() {
	// The magic also matches the RLE byte
	image.RegisterFormat(formatName, "\x0a?\x01", Decode, DecodeConfig)
}
