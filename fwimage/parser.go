package fwimage

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/fwkit/insta360/binio"
)

// minFileSize is the smallest container that can hold a header, six
// empty segment frames, and the trailer.
const minFileSize = headerLen + SegmentCount*segmentHeaderLen + trailerLen + digestLen

// Decode parses a complete firmware file. Per-segment data CRC
// mismatches are collected into Firmware.Warnings; structural errors,
// bounds violations, and header-level checksum mismatches abort the
// decode with no partial result.
//
// Decode performs no I/O and does not retain data; segment contents
// are copied out of the input buffer.
func Decode(data []byte) (*Firmware, error) {
	if len(data) < minFileSize {
		return nil, &binio.TruncatedError{Offset: 0, Need: minFileSize, Have: len(data)}
	}

	body := data[:len(data)-trailerLen-digestLen]
	trailer := data[len(body) : len(body)+trailerLen]
	finalSum := data[len(body)+trailerLen:]

	fw := &Firmware{}
	bodySum, err := decodeTrailer(trailer, len(body), fw)
	if err != nil {
		return nil, err
	}

	if err := decodeBody(body, fw); err != nil {
		return nil, err
	}

	// Trailer digests cover the segment bytes, so a mismatch here is
	// only an independent failure when no segment was already flagged.
	if len(fw.Warnings) == 0 {
		if sum := binio.MD5(body); !bytes.Equal(sum[:], bodySum) {
			return nil, &HeaderChecksumError{
				Field:    "body md5",
				Segment:  -1,
				Declared: hex.EncodeToString(bodySum),
				Computed: hex.EncodeToString(sum[:]),
			}
		}
		if sum := binio.MD5(body, trailer); !bytes.Equal(sum[:], finalSum) {
			return nil, &HeaderChecksumError{
				Field:    "file md5",
				Segment:  -1,
				Declared: hex.EncodeToString(finalSum),
				Computed: hex.EncodeToString(sum[:]),
			}
		}
	}

	return fw, nil
}

// decodeTrailer parses and validates the trailer record, filling the
// identity fields of fw. It returns the declared body digest; digest
// validation is deferred until the body has been parsed.
func decodeTrailer(trailer []byte, bodyLen int, fw *Firmware) ([]byte, error) {
	r := binio.NewReader(trailer)

	bodySize, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	product, err := r.Bytes(32)
	if err != nil {
		return nil, err
	}
	version, err := r.Bytes(32)
	if err != nil {
		return nil, err
	}
	bodySum, err := r.Bytes(digestLen)
	if err != nil {
		return nil, err
	}
	hwID, err := r.Bytes(8)
	if err != nil {
		return nil, err
	}
	hwRev, err := r.Uint64()
	if err != nil {
		return nil, err
	}

	fw.Product = cutString(product)
	fw.Version = cutString(version)
	fw.HwID = string(hwID)
	fw.HwRev = hwRev

	if fw.Product != Product {
		return nil, fmt.Errorf("unsupported product name %q, want %q", fw.Product, Product)
	}
	if fw.HwID != HardwareID {
		return nil, fmt.Errorf("unsupported hardware ID %q, want %q", fw.HwID, HardwareID)
	}
	if fw.HwRev != HardwareRev {
		return nil, fmt.Errorf("unsupported hardware revision %d, want %d", fw.HwRev, HardwareRev)
	}
	if int64(bodySize) != int64(bodyLen) {
		if int64(bodySize) > int64(bodyLen) {
			return nil, &binio.TruncatedError{Offset: bodyLen, Need: int(bodySize), Have: bodyLen}
		}
		return nil, fmt.Errorf("trailer declares %d body bytes, file has %d", bodySize, bodyLen)
	}

	return bodySum, nil
}

// decodeBody parses the body header, the segment table, and all
// segment frames.
func decodeBody(body []byte, fw *Firmware) error {
	r := binio.NewReader(body)

	pad, err := r.Bytes(32)
	if err != nil {
		return err
	}
	if !binio.IsZero(pad) {
		return fmt.Errorf("header padding at offset 0 is not zero")
	}

	magicOff := r.Offset()
	magic, err := r.Uint32()
	if err != nil {
		return err
	}
	if magic != HeaderMagic {
		return &MagicError{Offset: magicOff, Got: magic, Want: HeaderMagic}
	}

	bodyCRC, err := r.Uint32()
	if err != nil {
		return err
	}
	pad, err = r.Bytes(8)
	if err != nil {
		return err
	}
	if !binio.IsZero(pad) {
		return fmt.Errorf("header padding at offset 0x28 is not zero")
	}

	type tableEntry struct {
		size uint32
		crc  uint32
	}
	entries := make([]tableEntry, tableSlots)
	for i := range entries {
		if entries[i].size, err = r.Uint32(); err != nil {
			return err
		}
		if entries[i].crc, err = r.Uint32(); err != nil {
			return err
		}
	}
	// Trailing all-zero slots are unused.
	live := tableSlots
	for live > 0 && entries[live-1] == (tableEntry{}) {
		live--
	}
	if live != SegmentCount {
		return fmt.Errorf("segment table has %d live entries, want %d", live, SegmentCount)
	}

	extra, err := r.Bytes(headerExtraLen)
	if err != nil {
		return err
	}
	fw.HeaderExtra = bytes.Clone(extra)

	var running binio.RunningCRC
	for i := 0; i < live; i++ {
		seg, hdr, err := decodeSegmentHeader(r, i)
		if err != nil {
			return err
		}
		size := int(hdr.size)
		if entries[i].size != 0 && int(entries[i].size) != size+segmentHeaderLen {
			return fmt.Errorf("segment %d: table size %d does not match frame size %d",
				i, entries[i].size, size+segmentHeaderLen)
		}

		data, err := r.Bytes(size)
		if err != nil {
			return err
		}
		seg.Data = bytes.Clone(data)
		fw.Segments = append(fw.Segments, seg)

		if computed := binio.CRC32(data); computed != hdr.dataCRC {
			fw.Warnings = append(fw.Warnings, &ChecksumError{
				Segment:  i,
				Declared: hdr.dataCRC,
				Computed: computed,
			})
		}

		running.Update(hdr.raw)
		running.Update(data)
		// The table CRC chains over every frame so far; once a segment
		// has been flagged the mismatch is already explained.
		if computed := ^running.Sum(); computed != entries[i].crc && len(fw.Warnings) == 0 {
			return &HeaderChecksumError{
				Field:    "segment table crc",
				Segment:  i,
				Declared: fmt.Sprintf("0x%08X", entries[i].crc),
				Computed: fmt.Sprintf("0x%08X", computed),
			}
		}
	}

	if r.Remaining() != 0 {
		return fmt.Errorf("trailing data: %d bytes after last segment", r.Remaining())
	}
	if running.Sum() != bodyCRC && len(fw.Warnings) == 0 {
		return &HeaderChecksumError{
			Field:    "body crc",
			Segment:  -1,
			Declared: fmt.Sprintf("0x%08X", bodyCRC),
			Computed: fmt.Sprintf("0x%08X", running.Sum()),
		}
	}

	return nil
}

// segmentHeader is the parsed 256-byte frame header plus its raw bytes
// (needed for the running CRC).
type segmentHeader struct {
	dataCRC uint32
	size    uint32
	raw     []byte
}

func decodeSegmentHeader(r *binio.Reader, index int) (*Segment, *segmentHeader, error) {
	frameOff := r.Offset()
	raw, err := r.Bytes(segmentHeaderLen)
	if err != nil {
		return nil, nil, err
	}

	hr := binio.NewReader(raw)
	dataCRC, _ := hr.Uint32()
	version, _ := hr.Uint32()
	date, _ := hr.Uint32()
	size, _ := hr.Uint32()
	extra1, _ := hr.Uint32()
	extra2, _ := hr.Uint32()
	magic, _ := hr.Uint32()
	pad := hr.Rest()

	if version != SegmentVersion {
		return nil, nil, fmt.Errorf("segment %d: unsupported header version 0x%08X, want 0x%08X",
			index, version, uint32(SegmentVersion))
	}
	if magic != SegmentMagic {
		return nil, nil, &MagicError{Offset: frameOff + 24, Got: magic, Want: SegmentMagic}
	}
	if !binio.IsZero(pad) {
		return nil, nil, fmt.Errorf("segment %d: header padding is not zero", index)
	}

	seg := &Segment{
		Index:   index,
		Version: version,
		Date:    date,
		Extra1:  extra1,
		Extra2:  extra2,
	}
	return seg, &segmentHeader{dataCRC: dataCRC, size: size, raw: raw}, nil
}

// cutString interprets b as a NUL-padded string.
func cutString(b []byte) string {
	return string(bytes.TrimRight(b, "\x00"))
}
