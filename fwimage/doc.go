// Package fwimage provides decoding and encoding of Insta360 X3
// firmware container files.
//
// # Container File Format
//
// A firmware file is a body followed by a 100-byte trailer and a final
// 16-byte MD5. All integers are little-endian.
//
// Trailer layout (100 bytes):
//
//	[BodySize(4)][Product(32)][Version(32)][BodyMD5(16)][HwID(8)][HwRev(8)]
//
// Product and Version are NUL-padded strings. BodyMD5 is md5(body);
// the final digest after the trailer is md5(body + trailer).
//
// Body layout:
//
//	[Zero(32)][Magic(4)=8732DFE6][BodyCRC(4)][Zero(8)]
//	[SegmentTable: 16 x {Size(4), CRC(4)}]
//	[HeaderExtra(0x180)]
//	[6 x SegmentFrame]
//
// The segment table holds exactly six live entries; trailing all-zero
// slots are unused. A live entry's Size is the full frame length
// (256-byte segment header plus data), except the last live entry,
// which is written with Size 0 and sized by its own header. Entry CRC
// is the bitwise complement of the running CRC-32 after that segment's
// frame. HeaderExtra is opaque and passed through unchanged.
//
// Segment frame layout:
//
//	[DataCRC(4)][Version(4)=01000000][Date(4)][Size(4)]
//	[Extra1(4)][Extra2(4)][Magic(4)=A324EB90][Zero(228)]
//	[Data(Size)]
//
// Segments are identified by position: RTOS image, romfs half A,
// romfs half B, kernel, root filesystem, device tree. Their contents
// are opaque byte ranges to this package.
//
// # Checksum Policy
//
// Decode never refuses to proceed on a per-segment data CRC mismatch:
// the mismatch is collected into Firmware.Warnings and the segment is
// still extracted, so an intentionally modified firmware can be
// re-packed. Header-level checksums (segment table CRCs, body CRC,
// trailer digests) are fatal only when every segment's own data CRC
// checked clean; once a segment has been flagged, downstream global
// mismatches are attributed to it rather than reported again.
//
// Encode recomputes every checksum from the final byte layout and
// never trusts checksums present in its inputs.
//
// # Usage
//
// Decode a firmware file:
//
//	fw, err := fwimage.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, w := range fw.Warnings {
//	    log.Printf("warning: %v", w)
//	}
//	fmt.Printf("Version: %s\n", fw.Version)
//
// Re-encode after editing:
//
//	out, err := fwimage.Encode(fw)
package fwimage
