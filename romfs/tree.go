package romfs

import (
	"fmt"
	"sort"
	"strings"
)

// NodeKind distinguishes files from directories.
type NodeKind uint8

const (
	// KindFile is a regular file node
	KindFile NodeKind = iota

	// KindDir is a directory node
	KindDir
)

func (k NodeKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Root is the arena index of the root directory.
const Root = 0

// Node is a single entry of a directory tree. Nodes live in a Tree's
// arena and refer to their parent by index.
type Node struct {
	// Name is the entry name within its parent (no separators)
	Name string

	// Kind is file or directory
	Kind NodeKind

	// Parent is the arena index of the owning directory; -1 for root
	Parent int

	// Data is the file content; nil for directories
	Data []byte
}

// Tree is an arena of nodes forming a directory tree. The zero index
// is the unnamed root directory. Use NewTree, Mkdir, and AddFile to
// build well-formed trees; Encode validates structure regardless.
type Tree struct {
	Nodes []Node
}

// NewTree returns a tree holding only the root directory.
func NewTree() *Tree {
	return &Tree{Nodes: []Node{{Kind: KindDir, Parent: -1}}}
}

// Len returns the number of nodes including the root.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Mkdir adds a directory under parent and returns its index.
func (t *Tree) Mkdir(parent int, name string) (int, error) {
	return t.add(parent, name, KindDir, nil)
}

// AddFile adds a file with the given content under parent and returns
// its index.
func (t *Tree) AddFile(parent int, name string, data []byte) (int, error) {
	return t.add(parent, name, KindFile, data)
}

func (t *Tree) add(parent int, name string, kind NodeKind, data []byte) (int, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}
	if parent < 0 || parent >= len(t.Nodes) || t.Nodes[parent].Kind != KindDir {
		return 0, &DanglingParentError{Node: len(t.Nodes), Parent: parent}
	}
	if _, ok := t.Child(parent, name); ok {
		return 0, &DuplicateNameError{Dir: t.Path(parent), Name: name}
	}
	t.Nodes = append(t.Nodes, Node{Name: name, Kind: kind, Parent: parent, Data: data})
	return len(t.Nodes) - 1, nil
}

// Child returns the index of the named entry of directory parent.
func (t *Tree) Child(parent int, name string) (int, bool) {
	for i := range t.Nodes {
		if i != Root && t.Nodes[i].Parent == parent && t.Nodes[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// Lookup resolves a slash-separated path to a node index.
func (t *Tree) Lookup(path string) (int, bool) {
	cur := Root
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		idx, ok := t.Child(cur, seg)
		if !ok {
			return 0, false
		}
		cur = idx
	}
	return cur, true
}

// Path returns the slash-separated path of a node ("" for the root).
// It returns "?" for nodes whose parent chain is broken.
func (t *Tree) Path(idx int) string {
	var segs []string
	for steps := 0; idx != Root; steps++ {
		if idx < 0 || idx >= len(t.Nodes) || steps > len(t.Nodes) {
			return "?"
		}
		segs = append(segs, t.Nodes[idx].Name)
		idx = t.Nodes[idx].Parent
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, "/")
}

// Walk visits every node except the root in depth-first order,
// lexicographic by name within each directory. It stops at the first
// error from fn and returns it.
func (t *Tree) Walk(fn func(idx int, path string, n *Node) error) error {
	return t.walk(Root, "", fn)
}

func (t *Tree) walk(dir int, prefix string, fn func(int, string, *Node) error) error {
	for _, idx := range t.childrenOf(dir) {
		n := &t.Nodes[idx]
		path := n.Name
		if prefix != "" {
			path = prefix + "/" + n.Name
		}
		if err := fn(idx, path, n); err != nil {
			return err
		}
		if n.Kind == KindDir {
			if err := t.walk(idx, path, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// childrenOf returns the indices of dir's entries sorted by name.
func (t *Tree) childrenOf(dir int) []int {
	var out []int
	for i := range t.Nodes {
		if i != Root && t.Nodes[i].Parent == dir {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return t.Nodes[out[a]].Name < t.Nodes[out[b]].Name
	})
	return out
}

// hasChildren reports whether directory dir owns at least one entry.
func (t *Tree) hasChildren(dir int) bool {
	for i := range t.Nodes {
		if i != Root && t.Nodes[i].Parent == dir {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants of the arena: every
// non-root node has an in-range directory parent, parent chains reach
// the root without cycling, sibling names are unique and well-formed.
func (t *Tree) Validate() error {
	if len(t.Nodes) == 0 || t.Nodes[Root].Kind != KindDir {
		return fmt.Errorf("tree has no root directory")
	}
	for i := 1; i < len(t.Nodes); i++ {
		n := &t.Nodes[i]
		if err := checkName(n.Name); err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		if n.Parent < 0 || n.Parent >= len(t.Nodes) || t.Nodes[n.Parent].Kind != KindDir {
			return &DanglingParentError{Node: i, Parent: n.Parent}
		}
		// Bounded parent walk: more steps than nodes means a cycle.
		cur := i
		for steps := 0; cur != Root; steps++ {
			if steps > len(t.Nodes) {
				return &CycleError{Node: i}
			}
			cur = t.Nodes[cur].Parent
			if cur < 0 || cur >= len(t.Nodes) {
				return &DanglingParentError{Node: i, Parent: cur}
			}
		}
	}
	type sibling struct {
		parent int
		name   string
	}
	seen := make(map[sibling]bool)
	for i := 1; i < len(t.Nodes); i++ {
		key := sibling{t.Nodes[i].Parent, t.Nodes[i].Name}
		if seen[key] {
			return &DuplicateNameError{Dir: t.Path(t.Nodes[i].Parent), Name: t.Nodes[i].Name}
		}
		seen[key] = true
	}
	return nil
}

// checkName rejects names the on-disk format cannot represent.
func checkName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty entry name")
	case name == "." || name == "..":
		return fmt.Errorf("entry name %q is reserved", name)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("entry name %q contains a separator or NUL", name)
	}
	return nil
}
