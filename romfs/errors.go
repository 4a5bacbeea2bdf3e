package romfs

import "fmt"

// MagicError indicates that the table region does not start with the
// romfs magic value.
type MagicError struct {
	Got  uint32
	Want uint32
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("invalid romfs magic: got 0x%08X, want 0x%08X", e.Got, e.Want)
}

// OffsetError indicates that a file's declared data range does not lie
// cleanly inside the data region.
type OffsetError struct {
	Name   string
	Offset uint32
	Size   uint32
	Reason string
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("file %q: data range [0x%X, +0x%X) %s", e.Name, e.Offset, e.Size, e.Reason)
}

// ChecksumError indicates that a file's content does not match its
// table CRC. Unlike the container codec's segment warnings, this is
// fatal: no partial filesystem is ever produced.
type ChecksumError struct {
	Name     string
	Declared uint32
	Computed uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("file %q: checksum mismatch: declared 0x%08X, computed 0x%08X",
		e.Name, e.Declared, e.Computed)
}

// DuplicateNameError indicates two sibling entries with the same name.
type DuplicateNameError struct {
	Dir  string
	Name string
}

func (e *DuplicateNameError) Error() string {
	if e.Dir == "" {
		return fmt.Sprintf("duplicate name %q in root directory", e.Name)
	}
	return fmt.Sprintf("duplicate name %q in directory %q", e.Name, e.Dir)
}

// DanglingParentError indicates a node whose parent index is out of
// range or does not refer to a directory. Path is set when the fault
// was found while resolving a slash-separated entry name.
type DanglingParentError struct {
	Node   int
	Parent int
	Path   string
}

func (e *DanglingParentError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("entry %q: parent path is not a directory", e.Path)
	}
	return fmt.Sprintf("node %d has dangling parent index %d", e.Node, e.Parent)
}

// CycleError indicates that a node's parent chain never reaches the
// root.
type CycleError struct {
	Node int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("directory tree has a parent cycle at node %d", e.Node)
}

// NameTooLongError indicates an entry path that does not fit the
// fixed-width name field.
type NameTooLongError struct {
	Path string
	Max  int
}

func (e *NameTooLongError) Error() string {
	return fmt.Sprintf("entry name %q is %d bytes, maximum is %d", e.Path, len(e.Path), e.Max)
}

// TooManyEntriesError indicates a tree or image exceeding the table's
// fixed capacity.
type TooManyEntriesError struct {
	Count int
	Max   int
}

func (e *TooManyEntriesError) Error() string {
	return fmt.Sprintf("%d entries exceed the table capacity of %d", e.Count, e.Max)
}
