package fwimage

import (
	"fmt"
	"math"

	"github.com/fwkit/insta360/binio"
)

// Encode serializes a firmware container, recomputing every CRC and
// digest from the final byte layout. Checksums present in the input
// (including Firmware.Warnings) are ignored. Validation runs before
// any bytes are produced, so a failed Encode emits nothing.
//
// Decode(Encode(fw)) reproduces fw exactly; the output is not
// guaranteed byte-identical to the file fw was decoded from, but is
// accepted by the same Decode.
func Encode(fw *Firmware) ([]byte, error) {
	if err := validate(fw); err != nil {
		return nil, err
	}

	type tableEntry struct {
		size uint32
		crc  uint32
	}

	total := 0
	for _, s := range fw.Segments {
		total += segmentHeaderLen + len(s.Data)
	}
	if int64(headerLen)+int64(total) > math.MaxUint32 {
		return nil, &SegmentTooLargeError{Segment: -1, Size: headerLen + total, Max: math.MaxUint32}
	}

	var running binio.RunningCRC
	entries := make([]tableEntry, len(fw.Segments))
	frames := binio.NewWriter(total)
	for i, s := range fw.Segments {
		hdr := binio.NewWriter(segmentHeaderLen)
		hdr.Uint32(binio.CRC32(s.Data))
		hdr.Uint32(s.Version)
		hdr.Uint32(s.Date)
		hdr.Uint32(uint32(len(s.Data)))
		hdr.Uint32(s.Extra1)
		hdr.Uint32(s.Extra2)
		hdr.Uint32(SegmentMagic)
		hdr.Zero(segmentPadLen)

		running.Update(hdr.Bytes())
		running.Update(s.Data)
		frames.Write(hdr.Bytes())
		frames.Write(s.Data)
		entries[i] = tableEntry{
			size: uint32(segmentHeaderLen + len(s.Data)),
			crc:  ^running.Sum(),
		}
	}
	// The last live table entry carries size 0; the device reads the
	// size from the segment's own header.
	entries[len(entries)-1].size = 0

	w := binio.NewWriter(headerLen + total + trailerLen + digestLen)
	w.Zero(32)
	w.Uint32(HeaderMagic)
	w.Uint32(running.Sum())
	w.Zero(8)
	for i := 0; i < tableSlots; i++ {
		if i < len(entries) {
			w.Uint32(entries[i].size)
			w.Uint32(entries[i].crc)
		} else {
			w.Uint32(0)
			w.Uint32(0)
		}
	}
	w.Write(fw.HeaderExtra)
	w.Write(frames.Bytes())

	body := w.Bytes()
	bodySum := binio.MD5(body)

	t := binio.NewWriter(trailerLen)
	t.Uint32(uint32(len(body)))
	_ = t.FixedString(fw.Product, 32) // widths validated above
	_ = t.FixedString(fw.Version, 32)
	t.Write(bodySum[:])
	_ = t.FixedString(fw.HwID, 8)
	t.Uint64(fw.HwRev)

	finalSum := binio.MD5(body, t.Bytes())
	w.Write(t.Bytes())
	w.Write(finalSum[:])
	return w.Bytes(), nil
}

// validate rejects inputs the format cannot carry before any output
// is produced.
func validate(fw *Firmware) error {
	if len(fw.Segments) != SegmentCount {
		return &MetadataError{
			Field:  "segments",
			Reason: fmt.Sprintf("got %d segments, want %d", len(fw.Segments), SegmentCount),
		}
	}
	if len(fw.HeaderExtra) != headerExtraLen {
		return &MetadataError{
			Field:  "header_extra",
			Reason: fmt.Sprintf("got %d bytes, want %d", len(fw.HeaderExtra), headerExtraLen),
		}
	}
	if len(fw.Product) > 32 {
		return &MetadataError{Field: "product_name", Reason: "longer than 32 bytes"}
	}
	if len(fw.Version) > 32 {
		return &MetadataError{Field: "version_name", Reason: "longer than 32 bytes"}
	}
	if len(fw.HwID) != 8 {
		return &MetadataError{Field: "hw_id", Reason: "must be exactly 8 bytes"}
	}
	for i, s := range fw.Segments {
		if len(s.Data) > maxSegmentSize {
			return &SegmentTooLargeError{Segment: i, Size: len(s.Data), Max: maxSegmentSize}
		}
	}
	return nil
}
