package binary

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode/utf16"
	"unicode/utf8"
)

// Writer provides buffered writing utilities for class file encoding.
// All multi-byte values are written big-endian.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteU16 writes a big-endian uint16.
func (w *Writer) WriteU16(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU32 writes a big-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU64 writes a big-endian uint64.
func (w *Writer) WriteU64(v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteF32 writes the IEEE 754 bits of v big-endian.
func (w *Writer) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

// WriteF64 writes the IEEE 754 bits of v big-endian.
func (w *Writer) WriteF64(v float64) {
	w.WriteU64(math.Float64bits(v))
}

// WriteUTF8 writes a u16 length prefix followed by the modified UTF-8
// encoding of s. The caller checks the length with ModifiedUTF8Len first.
func (w *Writer) WriteUTF8(s string) {
	w.WriteU16(uint16(ModifiedUTF8Len(s)))
	AppendModifiedUTF8(w.buf, s)
}

// ModifiedUTF8Len returns the number of bytes s occupies in modified UTF-8:
// NUL takes two bytes and supplementary characters are written as two
// three-byte surrogates.
func ModifiedUTF8Len(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r == 0:
			n += 2
		case r < 0x80:
			n++
		case r < 0x800:
			n += 2
		case r < 0x10000:
			n += 3
		default:
			n += 6
		}
	}
	return n
}

// AppendModifiedUTF8 writes the modified UTF-8 encoding of s to buf.
// Invalid UTF-8 input is written as U+FFFD.
func AppendModifiedUTF8(buf *bytes.Buffer, s string) {
	for _, r := range s {
		switch {
		case r == 0:
			buf.WriteByte(0xC0)
			buf.WriteByte(0x80)
		case r < 0x80:
			buf.WriteByte(byte(r))
		case r < 0x10000:
			var tmp [utf8.UTFMax]byte
			n := utf8.EncodeRune(tmp[:], r)
			buf.Write(tmp[:n])
		default:
			hi, lo := utf16.EncodeRune(r)
			writeSurrogate(buf, hi)
			writeSurrogate(buf, lo)
		}
	}
}

func writeSurrogate(buf *bytes.Buffer, r rune) {
	buf.WriteByte(byte(0xE0 | (r>>12)&0x0F))
	buf.WriteByte(byte(0x80 | (r>>6)&0x3F))
	buf.WriteByte(byte(0x80 | r&0x3F))
}
