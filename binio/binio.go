// Package binio provides the shared wire-level primitives used by the
// firmware container and romfs codecs: a bounds-checked little-endian
// cursor for parsing untrusted buffers, an append-only builder for
// serializing, alignment arithmetic, and the checksum helpers the
// formats mandate (chained CRC-32/IEEE and MD5).
//
// All reads are bounds-checked; a read past the end of the buffer
// returns a *TruncatedError carrying the offending offset instead of
// panicking.
package binio

import "fmt"

// TruncatedError indicates that a read would run past the end of the
// input buffer. Offset is the position of the failed read.
type TruncatedError struct {
	Offset int
	Need   int
	Have   int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated input: need %d bytes at offset 0x%X, have %d", e.Need, e.Offset, e.Have)
}

// Align rounds n up to the next multiple of boundary.
// boundary must be a positive power of two or any positive integer.
func Align(n, boundary int) int {
	if boundary <= 0 {
		return n
	}
	rem := n % boundary
	if rem == 0 {
		return n
	}
	return n + boundary - rem
}

// IsZero reports whether every byte of b is zero.
func IsZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
