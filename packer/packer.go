package packer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/fwkit/insta360/fwimage"
	"github.com/fwkit/insta360/romfs"
)

// Packer moves firmware containers and romfs images between their
// on-disk file form and extracted directories. A zero-option Packer is
// usable; options add progress reporting, logging, and policy.
type Packer struct {
	config Config
}

// New creates a Packer with the given options.
//
// Example:
//
//	p := packer.New(
//	    packer.WithLogger(myLogger),
//	    packer.WithStrictChecksums(true),
//	)
func New(opts ...Option) *Packer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Packer{config: config}
}

// segmentFileName returns the fixed extraction name of segment i.
func segmentFileName(i int) string {
	return fmt.Sprintf("f%d.bin", i)
}

// Unpack decodes the firmware file at firmwarePath and extracts it
// into dir: one fN.bin per segment plus a metadata.json side-car.
// Segment checksum mismatches are logged and extraction continues,
// unless strict checksums were requested.
func (p *Packer) Unpack(ctx context.Context, firmwarePath, dir string) error {
	p.report(Progress{Phase: PhaseReading, Path: firmwarePath})
	data, err := os.ReadFile(firmwarePath)
	if err != nil {
		return errors.Wrap(err, "read firmware")
	}

	p.report(Progress{Phase: PhaseDecoding, Bytes: len(data)})
	fw, err := fwimage.Decode(data)
	if err != nil {
		return errors.Wrap(err, "decode firmware")
	}
	for _, w := range fw.Warnings {
		p.logError("segment checksum mismatch",
			"segment", w.Segment,
			"role", fw.Segments[w.Segment].Role(),
			"declared", fmt.Sprintf("0x%08X", w.Declared),
			"computed", fmt.Sprintf("0x%08X", w.Computed))
	}
	if p.config.StrictChecksums && len(fw.Warnings) > 0 {
		return errors.Wrapf(fw.Warnings[0], "strict checksums: %d segment(s) failed", len(fw.Warnings))
	}

	if err := os.MkdirAll(dir, p.config.DirPerm); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	doc, err := json.MarshalIndent(fw.Metadata(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode metadata")
	}
	doc = append(doc, '\n')
	if err := os.WriteFile(filepath.Join(dir, fwimage.MetadataFile), doc, p.config.FilePerm); err != nil {
		return errors.Wrap(err, "write metadata")
	}

	written := 0
	for i, seg := range fw.Segments {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := segmentFileName(seg.Index)
		if err := os.WriteFile(filepath.Join(dir, name), seg.Data, p.config.FilePerm); err != nil {
			return errors.Wrapf(err, "write segment %d", seg.Index)
		}
		written += len(seg.Data)
		p.logDebug("extracted segment", "file", name, "role", seg.Role(), "size", len(seg.Data))
		p.report(Progress{
			Phase:   PhaseExtracting,
			Current: i + 1,
			Total:   len(fw.Segments),
			Path:    name,
			Bytes:   written,
		})
	}

	p.report(Progress{Phase: PhaseComplete, Bytes: written})
	p.logInfo("unpacked firmware",
		"version", fw.Version,
		"segments", len(fw.Segments),
		"warnings", len(fw.Warnings))
	return nil
}

// Pack rebuilds a firmware file from an unpack directory. The
// metadata.json side-car supplies the header fields; the fN.bin files
// supply the segment contents. All checksums are recomputed, so edited
// segments come out consistently signed. Nothing is written until the
// whole container encodes successfully.
func (p *Packer) Pack(ctx context.Context, dir, firmwarePath string) error {
	p.report(Progress{Phase: PhaseReading, Path: dir})
	f, err := os.Open(filepath.Join(dir, fwimage.MetadataFile))
	if err != nil {
		return errors.Wrap(err, "open metadata")
	}
	md, err := fwimage.ParseMetadata(f)
	f.Close()
	if err != nil {
		return errors.Wrap(err, "parse metadata")
	}

	segments := make([][]byte, len(md.Segments))
	total := 0
	for i := range segments {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := segmentFileName(i)
		segments[i], err = os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return errors.Wrapf(err, "read segment %d", i)
		}
		total += len(segments[i])
		p.report(Progress{
			Phase:   PhaseReading,
			Current: i + 1,
			Total:   len(segments),
			Path:    name,
			Bytes:   total,
		})
	}

	fw, err := fwimage.FromMetadata(md, segments)
	if err != nil {
		return errors.Wrap(err, "assemble firmware")
	}
	p.report(Progress{Phase: PhaseEncoding, Bytes: total})
	out, err := fwimage.Encode(fw)
	if err != nil {
		return errors.Wrap(err, "encode firmware")
	}

	p.report(Progress{Phase: PhaseWriting, Path: firmwarePath, Bytes: len(out)})
	if err := os.WriteFile(firmwarePath, out, p.config.FilePerm); err != nil {
		return errors.Wrap(err, "write firmware")
	}

	p.report(Progress{Phase: PhaseComplete, Bytes: len(out)})
	p.logInfo("packed firmware",
		"version", fw.Version,
		"segments", len(fw.Segments),
		"size", len(out))
	return nil
}

// UnpackRomfs decodes the romfs image at imagePath and materializes
// its directory tree under dir.
func (p *Packer) UnpackRomfs(ctx context.Context, imagePath, dir string) error {
	p.report(Progress{Phase: PhaseReading, Path: imagePath})
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return errors.Wrap(err, "read image")
	}

	p.report(Progress{Phase: PhaseDecoding, Bytes: len(data)})
	tree, err := romfs.Decode(data)
	if err != nil {
		return errors.Wrap(err, "decode romfs")
	}

	if err := os.MkdirAll(dir, p.config.DirPerm); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	files, total := 0, 0
	walkErr := tree.Walk(func(idx int, path string, n *romfs.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(path))
		if n.Kind == romfs.KindDir {
			return os.MkdirAll(target, p.config.DirPerm)
		}
		if err := os.WriteFile(target, n.Data, p.config.FilePerm); err != nil {
			return err
		}
		files++
		total += len(n.Data)
		p.logDebug("extracted file", "path", path, "size", len(n.Data))
		p.report(Progress{Phase: PhaseExtracting, Current: files, Path: path, Bytes: total})
		return nil
	})
	if walkErr != nil {
		return errors.Wrap(walkErr, "extract romfs")
	}

	p.report(Progress{Phase: PhaseComplete, Bytes: total})
	p.logInfo("unpacked romfs", "entries", tree.Len()-1, "files", files)
	return nil
}

// PackRomfs builds a romfs image from a directory tree on disk.
// Regular files and directories are included; anything else (symlinks,
// devices) fails the operation. Nothing is written until the whole
// image encodes successfully.
func (p *Packer) PackRomfs(ctx context.Context, dir, imagePath string) error {
	p.report(Progress{Phase: PhaseReading, Path: dir})
	tree := romfs.NewTree()
	parents := map[string]int{".": romfs.Root}
	files, total := 0, 0

	walkErr := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		parent := parents[filepath.Dir(rel)]
		switch {
		case d.IsDir():
			idx, err := tree.Mkdir(parent, d.Name())
			if err != nil {
				return err
			}
			parents[rel] = idx
		case d.Type().IsRegular():
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if _, err := tree.AddFile(parent, d.Name(), data); err != nil {
				return err
			}
			files++
			total += len(data)
			p.report(Progress{
				Phase:   PhaseReading,
				Current: files,
				Path:    filepath.ToSlash(rel),
				Bytes:   total,
			})
		default:
			return errors.Errorf("%s: unsupported file type %v", rel, d.Type())
		}
		return nil
	})
	if walkErr != nil {
		return errors.Wrap(walkErr, "collect input tree")
	}

	p.report(Progress{Phase: PhaseEncoding, Bytes: total})
	out, err := romfs.Encode(tree)
	if err != nil {
		return errors.Wrap(err, "encode romfs")
	}

	p.report(Progress{Phase: PhaseWriting, Path: imagePath, Bytes: len(out)})
	if err := os.WriteFile(imagePath, out, p.config.FilePerm); err != nil {
		return errors.Wrap(err, "write image")
	}

	p.report(Progress{Phase: PhaseComplete, Bytes: len(out)})
	p.logInfo("packed romfs", "files", files, "size", len(out))
	return nil
}

// report invokes the progress callback if one was configured.
func (p *Packer) report(pr Progress) {
	if p.config.ProgressCallback != nil {
		p.config.ProgressCallback(pr)
	}
}

func (p *Packer) logDebug(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (p *Packer) logInfo(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Info(msg, keysAndValues...)
	}
}

func (p *Packer) logError(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Error(msg, keysAndValues...)
	}
}
