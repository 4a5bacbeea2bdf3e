// Package romfs provides decoding and encoding of the read-only
// filesystem images embedded in the RTOS-side segments of Insta360 X3
// firmware.
//
// # Image Format
//
// An image is a fixed-size table region (0xA000 bytes) followed by a
// data region. All integers are little-endian.
//
// Table region:
//
//	[Magic(4)=66FC328A][Count(4)]
//	[Count x Entry(76): {Name(64), Size(4), Offset(4), CRC(4)}]
//	[zero fill to 0xA000]
//
// Names are NUL-padded. Offset is absolute from the start of the
// image and block-aligned (block = 2048 bytes); gaps between files are
// zero-filled, and a full zero block follows even an already-aligned
// file. CRC is the CRC-32/IEEE of the file data. The table holds at
// most 538 entries.
//
// Directories use the path-segment convention: an entry named
// "a/b.txt" implies directory "a". An empty directory is stored as an
// explicit entry whose name ends in "/" with Size, Offset, and CRC
// all zero, so (path, kind) pairs survive a round trip.
//
// # Directory Tree
//
// The in-memory representation is an arena of nodes addressed by
// integer index, with parent/child relations stored as indices. Index
// 0 is the unnamed root directory. Structural faults in a hand-built
// tree (dangling parent index, parent cycle, sibling name collision)
// are reported by Encode before any bytes are produced.
//
// Unlike the container codec, every error in this package is fatal:
// no partial filesystem is ever returned.
//
// # Usage
//
//	tree, err := romfs.Decode(image)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tree.Walk(func(idx int, path string, n *romfs.Node) error {
//	    fmt.Printf("%s %s (%d bytes)\n", n.Kind, path, len(n.Data))
//	    return nil
//	})
//
// Build and encode an image:
//
//	tree := romfs.NewTree()
//	dir, _ := tree.Mkdir(romfs.Root, "a")
//	tree.AddFile(dir, "b.txt", []byte("hello"))
//	image, err := romfs.Encode(tree)
package romfs
