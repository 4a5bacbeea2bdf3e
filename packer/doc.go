// Package packer orchestrates moving firmware containers and romfs
// images between their binary file form and editable directories on
// disk.
//
// The codec packages (fwimage, romfs) work purely on byte slices; this
// package adds the filesystem layout around them:
//
//   - Unpack extracts a firmware file into a directory of six segment
//     files (f0.bin .. f5.bin) plus a metadata.json side-car holding
//     the pass-through header fields.
//   - Pack reverses it, recomputing every checksum, so an edited
//     segment comes out consistently signed.
//   - UnpackRomfs and PackRomfs do the same for the romfs partitions
//     (segments 1 and 2 of a firmware file), materializing the
//     embedded filesystem as a real directory tree.
//
// Basic usage:
//
//	p := packer.New(
//	    packer.WithLogger(myLogger),
//	    packer.WithProgressCallback(func(pr packer.Progress) {
//	        fmt.Printf("[%s] %s\n", pr.Phase, pr.Path)
//	    }),
//	)
//	if err := p.Unpack(ctx, "InstaX3FW.pkg", "out/"); err != nil {
//	    log.Fatal(err)
//	}
//
// All operations take a context and abort between steps when it is
// cancelled. Outputs are only written after the corresponding encode
// step has fully succeeded, so a failed Pack never leaves a truncated
// firmware file behind.
package packer
