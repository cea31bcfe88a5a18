/*
Package stream implements the little-endian integer primitives shared by the
sprite file codecs.

Both Reader and Writer latch the first error they encounter; every later
call is a no-op returning zero values, so a codec can read or write a whole
header and check Err once at the end.
*/
package stream

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
)

var errNegativeSkip = errors.New("stream: negative skip")

type byteReader interface {
	io.Reader
	io.ByteReader
}

// Reader reads little-endian fields from an underlying stream.
type Reader struct {
	r   byteReader
	off int64
	err error
	tmp [4]byte
}

// NewReader returns a Reader for r. r is buffered unless it already
// implements io.ByteReader.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br}
}

func readFull(r io.Reader, b []byte) (int, error) {
	n, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// Err returns the first error encountered.
func (r *Reader) Err() error {
	return r.err
}

// Source returns the buffered stream behind r. Bytes read through it are
// not counted by Offset.
func (r *Reader) Source() io.Reader {
	return r.r
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.off
}

// Read fills b completely. A short read is io.ErrUnexpectedEOF.
func (r *Reader) Read(b []byte) error {
	if r.err != nil {
		return r.err
	}
	n, err := readFull(r.r, b)
	r.off += int64(n)
	r.err = err
	return err
}

// ReadByte reads an optional byte. Unlike U8 it returns a clean io.EOF at
// the end of the stream without latching it.
func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.r.ReadByte()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return 0, err
	}
	r.off++
	return b, nil
}

// U8 reads a required byte.
func (r *Reader) U8() uint8 {
	if r.err != nil {
		return 0
	}
	b, err := r.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
		return 0
	}
	r.off++
	return b
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() uint16 {
	if r.Read(r.tmp[:2]) != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(r.tmp[:2])
}

// I16 reads a little-endian int16.
func (r *Reader) I16() int16 {
	return int16(r.U16())
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() uint32 {
	if r.Read(r.tmp[:4]) != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(r.tmp[:4])
}

// Skip discards n bytes.
func (r *Reader) Skip(n int64) error {
	if r.err != nil {
		return r.err
	}
	if n < 0 {
		r.err = errNegativeSkip
		return r.err
	}
	m, err := io.CopyN(io.Discard, r.r, n)
	r.off += m
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	r.err = err
	return err
}

// SkipTo discards bytes until the absolute offset off is reached. Offsets
// behind the current position cannot be reached and return false without
// touching the stream.
func (r *Reader) SkipTo(off int64) (bool, error) {
	if off < r.off {
		return false, r.err
	}
	return true, r.Skip(off - r.off)
}

// Writer writes little-endian fields to an underlying stream.
type Writer struct {
	w   io.Writer
	n   int64
	err error
	tmp [4]byte
}

// NewWriter returns a Writer for w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered.
func (w *Writer) Err() error {
	return w.err
}

// Count returns the number of bytes written so far.
func (w *Writer) Count() int64 {
	return w.n
}

// Write writes all of b.
func (w *Writer) Write(b []byte) error {
	if w.err != nil {
		return w.err
	}
	n, err := w.w.Write(b)
	w.n += int64(n)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	w.err = err
	return err
}

// U8 writes a single byte.
func (w *Writer) U8(v uint8) {
	w.tmp[0] = v
	w.Write(w.tmp[:1])
}

// U16 writes a little-endian uint16.
func (w *Writer) U16(v uint16) {
	binary.LittleEndian.PutUint16(w.tmp[:2], v)
	w.Write(w.tmp[:2])
}

// I16 writes a little-endian int16.
func (w *Writer) I16(v int16) {
	w.U16(uint16(v))
}

// U32 writes a little-endian uint32.
func (w *Writer) U32(v uint32) {
	binary.LittleEndian.PutUint32(w.tmp[:4], v)
	w.Write(w.tmp[:4])
}

var zeroes [64]byte

// Zero writes n zero bytes.
func (w *Writer) Zero(n int) {
	for n > 0 && w.err == nil {
		c := n
		if c > len(zeroes) {
			c = len(zeroes)
		}
		w.Write(zeroes[:c])
		n -= c
	}
}
