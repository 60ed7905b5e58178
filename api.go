package v6disk

import (
	"time"
)

// FileStat describes a file system object in a format-independent way. Fields
// a file system has no information for are left at their zero values, except
// ModeFlags which should use the standardized S_* constants in this package.
type FileStat struct {
	InodeNumber  uint64
	Nlinks       uint64
	ModeFlags    uint32
	Uid          uint32
	Gid          uint32
	Size         int64
	BlockSize    int64
	NumBlocks    int64
	LastAccessed time.Time
	LastModified time.Time
}

// IsDir returns true if the object is a directory.
func (stat FileStat) IsDir() bool {
	return stat.ModeFlags&S_IFMT == S_IFDIR
}

// IsFile returns true if the object is a regular file.
func (stat FileStat) IsFile() bool {
	return stat.ModeFlags&S_IFMT == S_IFREG
}

// DirectoryEntry represents a file, directory, device, or other entity
// encountered on the file system.
type DirectoryEntry interface {
	// Name returns the base name of the entry on the file system.
	Name() string
	// Stat returns information about the object the entry points to.
	Stat() FileStat
}

// ReadingDriver is the interface for drivers supporting read operations.
// Read-only file system implementations in this module implement it in full;
// there is deliberately no writing counterpart.
type ReadingDriver interface {
	// ReadFile returns the entire contents of the file at the given path.
	ReadFile(path string) ([]byte, error)
	// Stat returns information about the directory entry at the given path.
	Stat(path string) (FileStat, error)
	// ReadDir lists the active entries of the directory at the given path, in
	// on-disk order.
	ReadDir(path string) ([]DirectoryEntry, error)
	// SameFile reports whether two stat results describe the same on-disk
	// object.
	SameFile(fi1, fi2 FileStat) bool
}
