package romfs

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/fwkit/insta360/binio"
)

// Constants for the romfs image format.
const (
	// Magic is the table region magic value
	Magic = 0x66FC328A

	// HeaderLen is the fixed size of the table region
	HeaderLen = 0xA000

	// BlockLen is the data alignment unit
	BlockLen = 2048

	// NameLen is the fixed width of an entry name
	NameLen = 64

	// entrySize is the size of one table entry
	entrySize = NameLen + 3*4

	// MaxEntries is the table's fixed capacity
	MaxEntries = (HeaderLen - 8) / entrySize
)

// Decode parses a complete romfs image (table region plus data
// region). Every error is fatal; no partial tree is returned.
func Decode(image []byte) (*Tree, error) {
	if len(image) < HeaderLen {
		return nil, &binio.TruncatedError{Offset: 0, Need: HeaderLen, Have: len(image)}
	}
	return DecodeRegions(image[:HeaderLen], image[HeaderLen:])
}

// DecodeRegions parses the two halves of a romfs image separately.
// Entry offsets are absolute from the start of the joined image, i.e.
// the first data byte is at offset HeaderLen.
func DecodeRegions(table, data []byte) (*Tree, error) {
	r := binio.NewReader(table)

	magic, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, &MagicError{Got: magic, Want: Magic}
	}
	count, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if count > MaxEntries {
		return nil, &TooManyEntriesError{Count: int(count), Max: MaxEntries}
	}

	type rawEntry struct {
		name   string
		size   uint32
		offset uint32
		crc    uint32
	}
	entries := make([]rawEntry, count)
	for i := range entries {
		nameB, err := r.Bytes(NameLen)
		if err != nil {
			return nil, err
		}
		name := string(bytes.TrimRight(nameB, "\x00")) // trailing padding is not significant
		if name == "" {
			return nil, fmt.Errorf("table entry %d has an empty name", i)
		}
		e := rawEntry{name: name}
		if e.size, err = r.Uint32(); err != nil {
			return nil, err
		}
		if e.offset, err = r.Uint32(); err != nil {
			return nil, err
		}
		if e.crc, err = r.Uint32(); err != nil {
			return nil, err
		}
		entries[i] = e
	}
	if !binio.IsZero(r.Rest()) {
		return nil, fmt.Errorf("table region padding after %d entries is not zero", count)
	}

	t := NewTree()
	type extent struct {
		name       string
		start, end int
	}
	var extents []extent
	for _, e := range entries {
		if strings.HasSuffix(e.name, "/") {
			if e.size != 0 || e.offset != 0 || e.crc != 0 {
				return nil, fmt.Errorf("directory entry %q carries data fields", e.name)
			}
			if err := addPath(t, strings.TrimSuffix(e.name, "/"), KindDir, nil); err != nil {
				return nil, err
			}
			continue
		}

		var content []byte
		if e.size > 0 {
			if e.offset%BlockLen != 0 {
				return nil, &OffsetError{Name: e.name, Offset: e.offset, Size: e.size, Reason: "is not block-aligned"}
			}
			if e.offset < HeaderLen {
				return nil, &OffsetError{Name: e.name, Offset: e.offset, Size: e.size, Reason: "starts before the data region"}
			}
			start := int(e.offset) - HeaderLen
			end := start + int(e.size)
			if uint64(e.offset)+uint64(e.size) > uint64(HeaderLen+len(data)) {
				return nil, &OffsetError{Name: e.name, Offset: e.offset, Size: e.size, Reason: "runs past the end of the image"}
			}
			content = data[start:end]
			extents = append(extents, extent{name: e.name, start: start, end: end})
		}
		if computed := binio.CRC32(content); computed != e.crc {
			return nil, &ChecksumError{Name: e.name, Declared: e.crc, Computed: computed}
		}
		if err := addPath(t, e.name, KindFile, bytes.Clone(content)); err != nil {
			return nil, err
		}
	}

	// File ranges must not overlap, and everything between them must
	// be zero fill.
	sort.Slice(extents, func(i, j int) bool { return extents[i].start < extents[j].start })
	pos := 0
	for _, x := range extents {
		if x.start < pos {
			return nil, &OffsetError{
				Name:   x.name,
				Offset: uint32(x.start + HeaderLen),
				Size:   uint32(x.end - x.start),
				Reason: "overlaps another file",
			}
		}
		if !binio.IsZero(data[pos:x.start]) {
			return nil, fmt.Errorf("padding before file %q is not zero", x.name)
		}
		pos = x.end
	}
	if !binio.IsZero(data[pos:]) {
		return nil, fmt.Errorf("padding after the last file is not zero")
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// addPath inserts a node at a slash-separated path, creating
// intermediate directories. A path segment that resolves to a file is
// a dangling parent; re-declaring an existing directory is allowed so
// images may list a directory alongside its contents.
func addPath(t *Tree, path string, kind NodeKind, data []byte) error {
	segs := strings.Split(path, "/")
	cur := Root
	for _, seg := range segs[:len(segs)-1] {
		if idx, ok := t.Child(cur, seg); ok {
			if t.Nodes[idx].Kind != KindDir {
				return &DanglingParentError{Node: idx, Parent: cur, Path: path}
			}
			cur = idx
			continue
		}
		idx, err := t.Mkdir(cur, seg)
		if err != nil {
			return err
		}
		cur = idx
	}

	last := segs[len(segs)-1]
	if kind == KindDir {
		if idx, ok := t.Child(cur, last); ok {
			if t.Nodes[idx].Kind != KindDir {
				return &DuplicateNameError{Dir: t.Path(cur), Name: last}
			}
			return nil
		}
		_, err := t.Mkdir(cur, last)
		return err
	}
	_, err := t.AddFile(cur, last, data)
	return err
}
