package romfs

import (
	"fmt"
	"math"

	"github.com/fwkit/insta360/binio"
)

// Encode serializes a tree into a complete romfs image.
func Encode(t *Tree) ([]byte, error) {
	table, data, err := EncodeRegions(t)
	if err != nil {
		return nil, err
	}
	return append(table, data...), nil
}

// EncodeRegions serializes a tree into the table and data regions of a
// romfs image. Entries are laid out by a depth-first traversal,
// lexicographic by name within each directory; file data is placed
// contiguously at block-aligned offsets with recomputed CRCs. Offsets
// in a prior image are not preserved. Validation runs before any bytes
// are produced, so a failed EncodeRegions emits nothing.
//
// Decode(Encode(t)) yields a tree with the same (path, kind, content)
// tuples as t.
func EncodeRegions(t *Tree) (table, data []byte, err error) {
	if err := t.Validate(); err != nil {
		return nil, nil, err
	}

	type entry struct {
		name string // includes a trailing "/" for directories
		node int
	}
	var entries []entry
	total := 0
	walkErr := t.Walk(func(idx int, path string, n *Node) error {
		switch n.Kind {
		case KindDir:
			// Only childless directories need their own entry; the
			// others are implied by their contents' paths.
			if !t.hasChildren(idx) {
				entries = append(entries, entry{name: path + "/", node: idx})
			}
		case KindFile:
			entries = append(entries, entry{name: path, node: idx})
			total += binio.Align(len(n.Data), BlockLen) + BlockLen
		}
		return nil
	})
	if walkErr != nil {
		return nil, nil, walkErr
	}

	if len(entries) > MaxEntries {
		return nil, nil, &TooManyEntriesError{Count: len(entries), Max: MaxEntries}
	}
	for _, e := range entries {
		if len(e.name) > NameLen {
			return nil, nil, &NameTooLongError{Path: e.name, Max: NameLen}
		}
	}
	if int64(HeaderLen)+int64(total) > math.MaxUint32 {
		return nil, nil, fmt.Errorf("image too large: data region of %d bytes overflows 32-bit offsets", total)
	}

	tw := binio.NewWriter(HeaderLen)
	dw := binio.NewWriter(total)
	tw.Uint32(Magic)
	tw.Uint32(uint32(len(entries)))
	for _, e := range entries {
		_ = tw.FixedString(e.name, NameLen) // length checked above
		n := &t.Nodes[e.node]
		if n.Kind == KindDir {
			tw.Uint32(0)
			tw.Uint32(0)
			tw.Uint32(0)
			continue
		}
		tw.Uint32(uint32(len(n.Data)))
		tw.Uint32(uint32(HeaderLen + dw.Len()))
		tw.Uint32(binio.CRC32(n.Data))
		dw.Write(n.Data)
		// A full pad block follows even an already aligned file; the
		// device expects the gap.
		dw.Zero(BlockLen - dw.Len()%BlockLen)
	}
	tw.Zero(HeaderLen - tw.Len())

	return tw.Bytes(), dw.Bytes(), nil
}
