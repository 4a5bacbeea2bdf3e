package packer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwkit/insta360/fwimage"
	"github.com/fwkit/insta360/romfs"
)

// writeTestFirmware encodes a six-segment firmware into dir and returns
// its path plus the segment payloads.
func writeTestFirmware(t *testing.T, dir string) (string, [][]byte) {
	t.Helper()

	extra := make([]byte, 0x180)
	for i := range extra {
		extra[i] = byte(i * 3)
	}
	fw := &fwimage.Firmware{
		Product:     fwimage.Product,
		Version:     "v1.0.33_build1",
		HwID:        fwimage.HardwareID,
		HwRev:       fwimage.HardwareRev,
		HeaderExtra: extra,
	}
	payloads := [][]byte{
		[]byte("rtos payload"),
		[]byte("romfs-a payload"),
		[]byte("romfs-b payload"),
		[]byte("kernel payload kernel payload"),
		[]byte("rootfs payload"),
		[]byte("dtb"),
	}
	for i, p := range payloads {
		fw.Segments = append(fw.Segments, &fwimage.Segment{
			Index:   i,
			Version: fwimage.SegmentVersion,
			Date:    0x20230815,
			Data:    p,
		})
	}

	data, err := fwimage.Encode(fw)
	require.NoError(t, err)

	path := filepath.Join(dir, "InstaX3FW.pkg")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, payloads
}

func TestUnpackPackRoundTrip(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	firmware, payloads := writeTestFirmware(t, tmp)
	unpacked := filepath.Join(tmp, "unpacked")

	p := New()
	require.NoError(t, p.Unpack(context.Background(), firmware, unpacked))

	// The unpack directory holds the side-car plus one file per segment.
	_, err := os.Stat(filepath.Join(unpacked, fwimage.MetadataFile))
	require.NoError(t, err)
	for i, want := range payloads {
		got, err := os.ReadFile(filepath.Join(unpacked, segmentFileName(i)))
		require.NoError(t, err)
		assert.Equal(t, want, got, "segment %d", i)
	}

	repacked := filepath.Join(tmp, "repacked.pkg")
	require.NoError(t, p.Pack(context.Background(), unpacked, repacked))

	original, err := os.ReadFile(firmware)
	require.NoError(t, err)
	rebuilt, err := os.ReadFile(repacked)
	require.NoError(t, err)
	assert.Equal(t, original, rebuilt, "unpack then pack must reproduce the file")
}

func TestUnpackModifiedSegment(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	firmware, _ := writeTestFirmware(t, tmp)

	data, err := os.ReadFile(firmware)
	require.NoError(t, err)
	pos := bytes.Index(data, []byte("kernel payload"))
	require.Positive(t, pos)
	data[pos] ^= 0xFF
	require.NoError(t, os.WriteFile(firmware, data, 0o644))

	// Default policy: extract anyway. The damaged segment comes out as
	// stored.
	unpacked := filepath.Join(tmp, "unpacked")
	require.NoError(t, New().Unpack(context.Background(), firmware, unpacked))
	got, err := os.ReadFile(filepath.Join(unpacked, segmentFileName(3)))
	require.NoError(t, err)
	assert.NotEqual(t, byte('k'), got[0])

	// Strict policy: refuse.
	strict := New(WithStrictChecksums(true))
	err = strict.Unpack(context.Background(), firmware, filepath.Join(tmp, "strict"))
	require.Error(t, err)

	var sumErr *fwimage.ChecksumError
	require.ErrorAs(t, err, &sumErr)
	assert.Equal(t, 3, sumErr.Segment)
}

func TestPackRecomputesChecksums(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	firmware, _ := writeTestFirmware(t, tmp)
	unpacked := filepath.Join(tmp, "unpacked")

	p := New()
	require.NoError(t, p.Unpack(context.Background(), firmware, unpacked))

	// Edit a segment on disk, repack, and verify the result decodes
	// with no warnings.
	edited := []byte("kernel payload edited on disk")
	require.NoError(t, os.WriteFile(filepath.Join(unpacked, segmentFileName(3)), edited, 0o644))

	repacked := filepath.Join(tmp, "edited.pkg")
	require.NoError(t, p.Pack(context.Background(), unpacked, repacked))

	data, err := os.ReadFile(repacked)
	require.NoError(t, err)
	fw, err := fwimage.Decode(data)
	require.NoError(t, err)
	assert.Empty(t, fw.Warnings)
	assert.Equal(t, edited, fw.Segments[3].Data)
}

func TestPackFailureWritesNothing(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	firmware, _ := writeTestFirmware(t, tmp)
	unpacked := filepath.Join(tmp, "unpacked")

	p := New()
	require.NoError(t, p.Unpack(context.Background(), firmware, unpacked))
	require.NoError(t, os.Remove(filepath.Join(unpacked, segmentFileName(5))))

	out := filepath.Join(tmp, "never.pkg")
	require.Error(t, p.Pack(context.Background(), unpacked, out))

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "failed pack must not leave an output file")
}

func TestRomfsRoundTripThroughDisk(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()

	// Lay out an input tree with nesting, an empty directory, and an
	// empty file.
	src := filepath.Join(tmp, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "a", "b"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a", "hello.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a", "b", "deep.bin"), bytes.Repeat([]byte{0x5A}, 3000), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "zero.txt"), nil, 0o644))

	p := New()
	image := filepath.Join(tmp, "romfs.bin")
	require.NoError(t, p.PackRomfs(context.Background(), src, image))

	dst := filepath.Join(tmp, "dst")
	require.NoError(t, p.UnpackRomfs(context.Background(), image, dst))

	collect := func(root string) map[string]string {
		out := map[string]string{}
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil || rel == "." {
				return err
			}
			if d.IsDir() {
				out[filepath.ToSlash(rel)] = "<dir>"
				return nil
			}
			data, err := os.ReadFile(path)
			out[filepath.ToSlash(rel)] = string(data)
			return err
		})
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, collect(src), collect(dst))

	// The image itself decodes to the same tree.
	data, err := os.ReadFile(image)
	require.NoError(t, err)
	tr, err := romfs.Decode(data)
	require.NoError(t, err)
	idx, ok := tr.Lookup("empty")
	require.True(t, ok)
	assert.Equal(t, romfs.KindDir, tr.Nodes[idx].Kind)
}

func TestUnpackCancelled(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	firmware, _ := writeTestFirmware(t, tmp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New().Unpack(ctx, firmware, filepath.Join(tmp, "out"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestProgressCallback(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	firmware, _ := writeTestFirmware(t, tmp)

	var phases []string
	p := New(WithProgressCallback(func(pr Progress) {
		phases = append(phases, pr.Phase)
	}))
	require.NoError(t, p.Unpack(context.Background(), firmware, filepath.Join(tmp, "out")))

	assert.Equal(t, PhaseReading, phases[0])
	assert.Contains(t, phases, PhaseDecoding)
	assert.Contains(t, phases, PhaseExtracting)
	assert.Equal(t, PhaseComplete, phases[len(phases)-1])
}
