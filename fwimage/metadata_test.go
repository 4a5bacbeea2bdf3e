package fwimage

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataRoundTrip(t *testing.T) {
	t.Parallel()

	fw := newTestFirmware(t)
	doc, err := json.MarshalIndent(fw.Metadata(), "", "  ")
	require.NoError(t, err)

	md, err := ParseMetadata(bytes.NewReader(doc))
	require.NoError(t, err)

	segments := make([][]byte, len(fw.Segments))
	for i, s := range fw.Segments {
		segments[i] = s.Data
	}
	rebuilt, err := FromMetadata(md, segments)
	require.NoError(t, err)

	want, err := Encode(fw)
	require.NoError(t, err)
	got, err := Encode(rebuilt)
	require.NoError(t, err)
	assert.Equal(t, want, got, "side-car round trip must not change the image")
}

func TestParseMetadataRejectsUnknownField(t *testing.T) {
	t.Parallel()

	doc := `{"product_name": "onex3", "surprise": true}`
	_, err := ParseMetadata(strings.NewReader(doc))

	var mdErr *MetadataError
	require.ErrorAs(t, err, &mdErr)
	assert.Contains(t, mdErr.Reason, "surprise")
}

func TestParseMetadataTypeError(t *testing.T) {
	t.Parallel()

	doc := `{"product_name": "onex3", "hw_rev": "one"}`
	_, err := ParseMetadata(strings.NewReader(doc))

	var mdErr *MetadataError
	require.ErrorAs(t, err, &mdErr)
	assert.Equal(t, "hw_rev", mdErr.Field)
}

func TestParseMetadataIgnoresChecksum(t *testing.T) {
	t.Parallel()

	// Older side-car documents carry a per-segment checksum; it is
	// accepted and discarded, never trusted.
	fw := newTestFirmware(t)
	md := fw.Metadata()
	for i := range md.Segments {
		md.Segments[i].Checksum = 0xBADC0DE
	}
	doc, err := json.Marshal(md)
	require.NoError(t, err)

	parsed, err := ParseMetadata(bytes.NewReader(doc))
	require.NoError(t, err)

	segments := make([][]byte, len(fw.Segments))
	for i, s := range fw.Segments {
		segments[i] = s.Data
	}
	rebuilt, err := FromMetadata(parsed, segments)
	require.NoError(t, err)

	data, err := Encode(rebuilt)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, decoded.Warnings)
}

func TestFromMetadataValidation(t *testing.T) {
	t.Parallel()

	fw := newTestFirmware(t)
	segments := make([][]byte, len(fw.Segments))
	for i, s := range fw.Segments {
		segments[i] = s.Data
	}

	tests := []struct {
		name     string
		mangle   func(md *Metadata)
		segments [][]byte
		field    string
	}{
		{
			name:     "header extra not hex",
			mangle:   func(md *Metadata) { md.HeaderExtra = "zzzz" },
			segments: segments,
			field:    "header_extra",
		},
		{
			name:     "header extra wrong length",
			mangle:   func(md *Metadata) { md.HeaderExtra = "deadbeef" },
			segments: segments,
			field:    "header_extra",
		},
		{
			name:     "segment count mismatch",
			mangle:   func(md *Metadata) {},
			segments: segments[:3],
			field:    "segments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := fw.Metadata()
			tt.mangle(md)

			_, err := FromMetadata(md, tt.segments)
			var mdErr *MetadataError
			require.ErrorAs(t, err, &mdErr)
			assert.Equal(t, tt.field, mdErr.Field)
		})
	}
}
