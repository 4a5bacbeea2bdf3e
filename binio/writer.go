package binio

import (
	"encoding/binary"
	"fmt"
)

// Writer is an append-only little-endian builder. The zero value is
// ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer preallocated for size bytes.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Uint32 appends v little-endian.
func (w *Writer) Uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// Uint64 appends v little-endian.
func (w *Writer) Uint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// Write appends b.
func (w *Writer) Write(b []byte) {
	w.buf = append(w.buf, b...)
}

// Zero appends n zero bytes.
func (w *Writer) Zero(n int) {
	w.buf = append(w.buf, make([]byte, n)...)
}

// PadTo appends zero bytes until the buffer length is a multiple of
// boundary.
func (w *Writer) PadTo(boundary int) {
	w.Zero(Align(len(w.buf), boundary) - len(w.buf))
}

// FixedString appends s as a NUL-padded field of width bytes.
// Fails if s does not fit.
func (w *Writer) FixedString(s string, width int) error {
	if len(s) > width {
		return fmt.Errorf("string %q does not fit in %d-byte field", s, width)
	}
	w.buf = append(w.buf, s...)
	w.Zero(width - len(s))
	return nil
}
