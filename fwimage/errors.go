package fwimage

import "fmt"

// MagicError indicates that a magic value at a fixed offset did not
// match the expected constant.
type MagicError struct {
	Offset int
	Got    uint32
	Want   uint32
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("invalid magic at offset 0x%X: got 0x%08X, want 0x%08X",
		e.Offset, e.Got, e.Want)
}

// ChecksumError indicates that a segment's data did not match its
// declared CRC. It is recoverable: Decode collects these into
// Firmware.Warnings and still extracts the segment.
type ChecksumError struct {
	Segment  int
	Declared uint32
	Computed uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("segment %d data checksum mismatch: declared 0x%08X, computed 0x%08X",
		e.Segment, e.Declared, e.Computed)
}

// HeaderChecksumError indicates that a header-level checksum (segment
// table CRC, body CRC, or a trailer digest) did not match while every
// segment's own data CRC checked clean. It is fatal.
type HeaderChecksumError struct {
	// Field names the checksum that failed
	Field string

	// Segment is the table entry index, or -1 for whole-body checksums
	Segment int

	Declared string
	Computed string
}

func (e *HeaderChecksumError) Error() string {
	if e.Segment >= 0 {
		return fmt.Sprintf("header checksum mismatch (%s, segment %d): declared %s, computed %s",
			e.Field, e.Segment, e.Declared, e.Computed)
	}
	return fmt.Sprintf("header checksum mismatch (%s): declared %s, computed %s",
		e.Field, e.Declared, e.Computed)
}

// SegmentTooLargeError indicates that a segment's data exceeds what
// the format's 32-bit size fields can carry. Segment is -1 when the
// combined body overflows.
type SegmentTooLargeError struct {
	Segment int
	Size    int
	Max     int
}

func (e *SegmentTooLargeError) Error() string {
	if e.Segment < 0 {
		return fmt.Sprintf("firmware body too large: %d bytes, maximum is %d", e.Size, e.Max)
	}
	return fmt.Sprintf("segment %d too large: %d bytes, maximum is %d", e.Segment, e.Size, e.Max)
}

// MetadataError indicates that a pass-through metadata field was
// edited into a shape the encoder cannot serialize.
type MetadataError struct {
	Field  string
	Reason string
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("invalid metadata field %q: %s", e.Field, e.Reason)
}
