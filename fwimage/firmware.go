package fwimage

// Constants for the X3 container format.
const (
	// HeaderMagic is the body header magic value
	HeaderMagic = 0x8732DFE6

	// SegmentMagic is the per-segment header magic value
	SegmentMagic = 0xA324EB90

	// SegmentVersion is the only segment header version understood
	SegmentVersion = 0x01000000

	// SegmentCount is the number of live segments in a firmware file
	SegmentCount = 6

	// Product is the product name carried in the trailer
	Product = "onex3"

	// HardwareID is the hardware identifier carried in the trailer
	HardwareID = "WFNI3XNO"

	// HardwareRev is the hardware revision carried in the trailer
	HardwareRev = 1

	// tableSlots is the number of segment table slots, live or not
	tableSlots = 16

	// headerExtraLen is the size of the opaque header tail
	headerExtraLen = 0x180

	// segmentHeaderLen is the size of a segment frame header
	segmentHeaderLen = 256

	// segmentPadLen is the zero padding inside a segment header
	segmentPadLen = segmentHeaderLen - 7*4

	// headerLen is the size of the full body header
	headerLen = 32 + 4 + 4 + 8 + tableSlots*8 + headerExtraLen

	// trailerLen is the size of the trailer record (before the final digest)
	trailerLen = 4 + 32 + 32 + 16 + 8 + 8

	// digestLen is the size of the MD5 digests in the trailer
	digestLen = 16

	// maxSegmentSize is the largest data length the 32-bit frame size
	// field can carry
	maxSegmentSize = int(^uint32(0)) - segmentHeaderLen
)

// segmentRoles names each segment position in a firmware file.
var segmentRoles = [SegmentCount]string{
	"rtos", "romfs-a", "romfs-b", "kernel", "rootfs", "dtb",
}

// Firmware represents a complete parsed firmware container.
type Firmware struct {
	// Product is the trailer product name (always "onex3" for files
	// this package accepts)
	Product string

	// Version is the trailer version string, pass-through
	Version string

	// HwID is the 8-byte hardware identifier
	HwID string

	// HwRev is the hardware revision
	HwRev uint64

	// HeaderExtra is the opaque 0x180-byte header tail, pass-through
	HeaderExtra []byte

	// Segments holds the six partitions in file order
	Segments []*Segment

	// Warnings collects per-segment data CRC mismatches found by
	// Decode; decoding proceeds past them so a modified firmware can
	// still be extracted and re-packed
	Warnings []*ChecksumError
}

// Segment is a single partition of the container.
type Segment struct {
	// Index is the segment position (0-5)
	Index int

	// Version is the segment header version, pass-through
	Version uint32

	// Date is the segment build date field, pass-through
	Date uint32

	// Extra1 and Extra2 are undocumented header fields, pass-through
	Extra1 uint32
	Extra2 uint32

	// Data is the raw partition content
	Data []byte
}

// Role returns the conventional name for the segment's position
// (rtos, romfs-a, romfs-b, kernel, rootfs, dtb).
func (s *Segment) Role() string {
	if s.Index < 0 || s.Index >= SegmentCount {
		return "unknown"
	}
	return segmentRoles[s.Index]
}
