package fwimage

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MetadataFile is the fixed name of the side-car document inside an
// unpack directory.
const MetadataFile = "metadata.json"

// Metadata is the human-editable side-car projection of the header
// fields that are not raw segment bytes. Every field is pass-through:
// pack serializes them verbatim. Checksum fields are accepted for
// compatibility but always ignored; pack recomputes every checksum
// from the segment bytes. Unknown keys are rejected so a reshaped
// document fails loudly instead of being silently miscompiled.
type Metadata struct {
	ProductName string            `json:"product_name"`
	VersionName string            `json:"version_name"`
	HwID        string            `json:"hw_id"`
	HwRev       uint64            `json:"hw_rev"`
	HeaderExtra string            `json:"header_extra"`
	Segments    []SegmentMetadata `json:"segments"`
}

// SegmentMetadata carries one segment's pass-through header fields.
type SegmentMetadata struct {
	Version uint32 `json:"version"`
	Date    uint32 `json:"date"`
	Extra1  uint32 `json:"extra1"`
	Extra2  uint32 `json:"extra2"`

	// Checksum is ignored if present; recomputed on pack.
	Checksum uint32 `json:"checksum,omitempty"`
}

// Metadata returns the side-car projection of fw.
func (fw *Firmware) Metadata() *Metadata {
	md := &Metadata{
		ProductName: fw.Product,
		VersionName: fw.Version,
		HwID:        fw.HwID,
		HwRev:       fw.HwRev,
		HeaderExtra: hex.EncodeToString(fw.HeaderExtra),
	}
	for _, s := range fw.Segments {
		md.Segments = append(md.Segments, SegmentMetadata{
			Version: s.Version,
			Date:    s.Date,
			Extra1:  s.Extra1,
			Extra2:  s.Extra2,
		})
	}
	return md
}

// ParseMetadata reads a side-car document. A field of the wrong type
// or an unknown key fails with *MetadataError naming the field.
func ParseMetadata(r io.Reader) (*Metadata, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var md Metadata
	if err := dec.Decode(&md); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &MetadataError{
				Field:  typeErr.Field,
				Reason: fmt.Sprintf("got JSON %s, want %s", typeErr.Value, typeErr.Type),
			}
		}
		return nil, &MetadataError{Field: "metadata", Reason: err.Error()}
	}
	return &md, nil
}

// FromMetadata combines a side-car document with raw segment contents
// into a Firmware ready for Encode. segments must be ordered by index.
func FromMetadata(md *Metadata, segments [][]byte) (*Firmware, error) {
	extra, err := hex.DecodeString(md.HeaderExtra)
	if err != nil {
		return nil, &MetadataError{Field: "header_extra", Reason: "not valid hex"}
	}
	if len(extra) != headerExtraLen {
		return nil, &MetadataError{
			Field:  "header_extra",
			Reason: fmt.Sprintf("got %d bytes, want %d", len(extra), headerExtraLen),
		}
	}
	if len(segments) != len(md.Segments) {
		return nil, &MetadataError{
			Field:  "segments",
			Reason: fmt.Sprintf("metadata describes %d segments, got %d", len(md.Segments), len(segments)),
		}
	}

	fw := &Firmware{
		Product:     md.ProductName,
		Version:     md.VersionName,
		HwID:        md.HwID,
		HwRev:       md.HwRev,
		HeaderExtra: extra,
	}
	for i, sm := range md.Segments {
		fw.Segments = append(fw.Segments, &Segment{
			Index:   i,
			Version: sm.Version,
			Date:    sm.Date,
			Extra1:  sm.Extra1,
			Extra2:  sm.Extra2,
			Data:    segments[i],
		})
	}
	return fw, nil
}
