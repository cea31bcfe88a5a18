package raster

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"io"

	"golang.org/x/image/riff"
)

/*
A Microsoft palette file is a RIFF container of form type "PAL " holding one
or more "data" chunks, each a LOGPALETTE:

	WORD palVersion;      // 0x0300
	WORD palNumEntries;
	PALETTEENTRY palPalEntry[palNumEntries]; // R, G, B, flags
*/

const palVersion = 0x0300

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

// ReadPAL reads every palette stored in a RIFF palette file.
func ReadPAL(r io.Reader) ([]*Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("raster: could not open RIFF stream: %w", err)
	}
	if formType != palType {
		return nil, fmt.Errorf("raster: unsupported RIFF form type %q", string(formType[:]))
	}

	var pals []*Palette
	for {
		id, _, data, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return pals, fmt.Errorf("raster: could not read chunk %d: %w", len(pals), err)
		}
		if id != dataType {
			continue
		}
		p, err := readLogPalette(data)
		if err != nil {
			return pals, fmt.Errorf("raster: chunk %d: %w", len(pals), err)
		}
		pals = append(pals, p)
	}

	return pals, nil
}

func readLogPalette(r io.Reader) (*Palette, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("could not read header: %w", err)
	}
	if v := binary.LittleEndian.Uint16(hdr[0:]); v != palVersion {
		return nil, fmt.Errorf("unsupported palette version %#04x", v)
	}
	n := int(binary.LittleEndian.Uint16(hdr[2:]))
	if n > MaxColors {
		return nil, ErrPaletteFull
	}

	buf := make([]byte, n*4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("could not read %d colors: %w", n, err)
	}

	p := NewPalette(n)
	for i := range p.entries {
		p.entries[i] = color.RGBA{buf[i*4], buf[i*4+1], buf[i*4+2], 0xff}
	}
	return p, nil
}

// WritePAL writes pals as a RIFF palette file with one data chunk each.
func WritePAL(w io.Writer, pals ...*Palette) error {
	size := 4
	for _, p := range pals {
		size += 8 + 4 + p.Len()*4
	}

	buf := make([]byte, 0, 8+size)
	buf = append(buf, riffType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(size))
	buf = append(buf, palType[:]...)

	for _, p := range pals {
		buf = append(buf, dataType[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(4+p.Len()*4))
		buf = binary.LittleEndian.AppendUint16(buf, palVersion)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(p.Len()))
		for i := 0; i < p.Len(); i++ {
			c := p.Entry(i)
			buf = append(buf, c.R, c.G, c.B, 0)
		}
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("raster: could not write palette: %w", err)
	}
	return nil
}
