package unixv6_test

import (
	"strings"
	"testing"

	"github.com/dargueta/v6disk"
	fs "github.com/dargueta/v6disk/file_systems/unixv6"
	v6test "github.com/dargueta/v6disk/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTree lays out:
//
//	/            inode 1
//	/a           inode 10 (directory)
//	/a/b         inode 20 (directory)
//	/a/b/c       inode 30 (file)
//	/motd        inode 5  (file)
func buildTree(t *testing.T) *v6test.ImageBuilder {
	builder := v6test.NewImageBuilder(t, 64, 4)
	builder.AddDirectory(t, 1, []v6test.DirentSpec{
		{Name: ".", Inumber: 1},
		{Name: "..", Inumber: 1},
		{Name: "a", Inumber: 10},
		{Name: "motd", Inumber: 5},
	})
	builder.AddDirectory(t, 10, []v6test.DirentSpec{
		{Name: ".", Inumber: 10},
		{Name: "..", Inumber: 1},
		{Name: "b", Inumber: 20},
	})
	builder.AddDirectory(t, 20, []v6test.DirentSpec{
		{Name: ".", Inumber: 20},
		{Name: "..", Inumber: 10},
		{Name: "c", Inumber: 30},
	})
	builder.AddFile(t, 30, 0o644, patternBytes(100))
	builder.AddFile(t, 5, 0o644, []byte("welcome to v6\n"))
	return builder
}

func TestLookupPath__Root(t *testing.T) {
	// The root path never touches the directory scanner, so even an image
	// with no directories at all resolves it.
	builder := v6test.NewImageBuilder(t, 64, 4)
	handle := builder.FileSystem(t)

	inumber, err := handle.LookupPath("/")
	require.NoError(t, err)
	assert.EqualValues(t, fs.RootInumber, inumber)
}

func TestLookupPath__Chain(t *testing.T) {
	handle := buildTree(t).FileSystem(t)

	inumber, err := handle.LookupPath("/a/b/c")
	require.NoError(t, err)
	assert.EqualValues(t, 30, inumber)

	inumber, err = handle.LookupPath("/a")
	require.NoError(t, err)
	assert.EqualValues(t, 10, inumber)

	inumber, err = handle.LookupPath("/motd")
	require.NoError(t, err)
	assert.EqualValues(t, 5, inumber)
}

func TestLookupPath__RepeatedSeparators(t *testing.T) {
	handle := buildTree(t).FileSystem(t)

	for _, path := range []string{"//a/b/c", "/a//b///c", "/a/b/c/"} {
		inumber, err := handle.LookupPath(path)
		require.NoErrorf(t, err, "%q should resolve", path)
		assert.EqualValues(t, 30, inumber, "%q resolved to the wrong inode", path)
	}
}

func TestLookupPath__NotFound(t *testing.T) {
	handle := buildTree(t).FileSystem(t)

	_, err := handle.LookupPath("/nope")
	assert.ErrorIs(t, err, v6disk.ErrNotFound)

	_, err = handle.LookupPath("/a/nope/c")
	assert.ErrorIs(t, err, v6disk.ErrNotFound)
}

// Descending through a non-directory component fails before any scan of it is
// attempted.
func TestLookupPath__ThroughFile(t *testing.T) {
	handle := buildTree(t).FileSystem(t)

	_, err := handle.LookupPath("/motd/x")
	assert.ErrorIs(t, err, v6disk.ErrNotADirectory)
}

func TestLookupPath__InvalidPaths(t *testing.T) {
	handle := buildTree(t).FileSystem(t)

	_, err := handle.LookupPath("")
	assert.ErrorIs(t, err, v6disk.ErrInvalidArgument)

	_, err = handle.LookupPath("a/b/c")
	assert.ErrorIs(t, err, v6disk.ErrInvalidArgument)
}

func TestLookupPath__TooLong(t *testing.T) {
	handle := buildTree(t).FileSystem(t)

	path := "/" + strings.Repeat("a/", fs.MaxPathLength)
	_, err := handle.LookupPath(path)
	assert.ErrorIs(t, err, v6disk.ErrNameTooLong)
}

// "." and ".." get no special handling; they resolve only because V6
// directories physically contain them.
func TestLookupPath__DotEntriesAreLiteral(t *testing.T) {
	handle := buildTree(t).FileSystem(t)

	inumber, err := handle.LookupPath("/a/..")
	require.NoError(t, err)
	assert.EqualValues(t, 1, inumber)

	inumber, err = handle.LookupPath("/a/.")
	require.NoError(t, err)
	assert.EqualValues(t, 10, inumber)
}

// A directory missing its dot entries simply can't resolve them.
func TestLookupPath__NoSynthesizedDots(t *testing.T) {
	builder := v6test.NewImageBuilder(t, 64, 4)
	builder.AddDirectory(t, 1, []v6test.DirentSpec{
		{Name: "a", Inumber: 10},
	})
	builder.AddDirectory(t, 10, []v6test.DirentSpec{
		{Name: "x", Inumber: 11},
	})
	builder.AddFile(t, 11, 0o644, nil)
	handle := builder.FileSystem(t)

	_, err := handle.LookupPath("/a/..")
	assert.ErrorIs(t, err, v6disk.ErrNotFound)
}
