package binio

import (
	"crypto/md5"
	"hash/crc32"
)

// CRC32 returns the CRC-32/IEEE checksum of b.
func CRC32(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

// RunningCRC is a CRC-32/IEEE accumulator chained across multiple
// buffers, matching zlib's crc32(data, prev) semantics. The zero value
// is the initial state. It is scoped to a single encode or decode call
// and must not be shared across goroutines.
type RunningCRC uint32

// Update folds b into the accumulator and returns the new state.
func (c *RunningCRC) Update(b []byte) uint32 {
	*c = RunningCRC(crc32.Update(uint32(*c), crc32.IEEETable, b))
	return uint32(*c)
}

// Sum returns the current accumulator value.
func (c RunningCRC) Sum() uint32 {
	return uint32(c)
}

// MD5 returns the MD5 digest of the concatenation of parts.
func MD5(parts ...[]byte) [md5.Size]byte {
	h := md5.New()
	for _, p := range parts {
		h.Write(p)
	}
	var sum [md5.Size]byte
	copy(sum[:], h.Sum(nil))
	return sum
}
