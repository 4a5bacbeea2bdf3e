package romfs

import (
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwkit/insta360/binio"
)

// newTestTree builds a small tree with nested files and an empty
// directory.
func newTestTree(t *testing.T) *Tree {
	t.Helper()

	tr := NewTree()
	a, err := tr.Mkdir(Root, "a")
	require.NoError(t, err)
	_, err = tr.AddFile(a, "b.txt", []byte("hello"))
	require.NoError(t, err)
	_, err = tr.Mkdir(a, "empty")
	require.NoError(t, err)
	_, err = tr.AddFile(Root, "z.bin", make([]byte, BlockLen))
	require.NoError(t, err)
	_, err = tr.AddFile(Root, "nil.txt", nil)
	require.NoError(t, err)
	return tr
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t)
	image, err := Encode(tr)
	require.NoError(t, err)

	got, err := Decode(image)
	require.NoError(t, err)

	type entry struct {
		kind NodeKind
		data string
	}
	collect := func(tr *Tree) map[string]entry {
		out := map[string]entry{}
		err := tr.Walk(func(idx int, path string, n *Node) error {
			out[path] = entry{kind: n.Kind, data: string(n.Data)}
			return nil
		})
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, collect(tr), collect(got))
}

func TestEncodeLayout(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t)
	table, data, err := EncodeRegions(tr)
	require.NoError(t, err)

	require.Len(t, table, HeaderLen)
	assert.Equal(t, uint32(Magic), binary.LittleEndian.Uint32(table))

	count := int(binary.LittleEndian.Uint32(table[4:]))
	// a/b.txt, a/empty/, nil.txt, z.bin
	assert.Equal(t, 4, count)

	// Every file offset is block-aligned, and a full pad block follows
	// even an already aligned file.
	wantData := 0
	for i := 0; i < count; i++ {
		off := 8 + i*(NameLen+12)
		name := string(table[off : off+NameLen])
		size := binary.LittleEndian.Uint32(table[off+NameLen:])
		fileOff := binary.LittleEndian.Uint32(table[off+NameLen+4:])
		if strings.Contains(name, "/\x00") {
			assert.Zero(t, size)
			assert.Zero(t, fileOff)
			continue
		}
		assert.Zero(t, fileOff%BlockLen, "entry %d offset alignment", i)
		assert.GreaterOrEqual(t, fileOff, uint32(HeaderLen))
		wantData += binio.Align(int(size)+1, BlockLen)
	}
	assert.Equal(t, wantData, len(data))
	assert.True(t, binio.IsZero(table[8+count*(NameLen+12):]), "table tail")
}

func TestEncodeTooManyEntries(t *testing.T) {
	t.Parallel()

	tr := NewTree()
	for i := 0; i < MaxEntries+1; i++ {
		_, err := tr.AddFile(Root, fmt.Sprintf("f%03d", i), nil)
		require.NoError(t, err)
	}

	image, err := Encode(tr)
	assert.Nil(t, image, "failed encode must emit nothing")

	var tooManyErr *TooManyEntriesError
	require.ErrorAs(t, err, &tooManyErr)
	assert.Equal(t, MaxEntries+1, tooManyErr.Count)
}

func TestEncodeNameTooLong(t *testing.T) {
	t.Parallel()

	tr := NewTree()
	_, err := tr.AddFile(Root, strings.Repeat("x", NameLen+1), nil)
	require.NoError(t, err, "the arena itself has no name limit")

	image, err := Encode(tr)
	assert.Nil(t, image)

	var nameErr *NameTooLongError
	require.ErrorAs(t, err, &nameErr)
	assert.Equal(t, NameLen, nameErr.Max)
}

func TestEncodeNestedNameTooLong(t *testing.T) {
	t.Parallel()

	// The limit applies to the full slash-separated path, not the leaf
	// name.
	tr := NewTree()
	d, err := tr.Mkdir(Root, strings.Repeat("d", 40))
	require.NoError(t, err)
	_, err = tr.AddFile(d, strings.Repeat("f", 40), nil)
	require.NoError(t, err)

	_, err = Encode(tr)
	var nameErr *NameTooLongError
	require.ErrorAs(t, err, &nameErr)
}

func TestEncodeRejectsMalformedArena(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tr   *Tree
	}{
		{
			name: "cycle",
			tr: &Tree{Nodes: []Node{
				{Kind: KindDir, Parent: -1},
				{Name: "a", Kind: KindDir, Parent: 2},
				{Name: "b", Kind: KindDir, Parent: 1},
			}},
		},
		{
			name: "dangling parent",
			tr: &Tree{Nodes: []Node{
				{Kind: KindDir, Parent: -1},
				{Name: "a", Kind: KindFile, Parent: 42},
			}},
		},
		{
			name: "duplicate siblings",
			tr: &Tree{Nodes: []Node{
				{Kind: KindDir, Parent: -1},
				{Name: "x", Kind: KindFile, Parent: Root},
				{Name: "x", Kind: KindFile, Parent: Root},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			image, err := Encode(tt.tr)
			assert.Nil(t, image)
			assert.Error(t, err)
		})
	}
}
