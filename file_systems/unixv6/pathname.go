package unixv6

import (
	"fmt"
	"strings"

	"github.com/dargueta/v6disk"
)

// PathSeparator splits pathname components. V6 knows no other separator.
const PathSeparator = "/"

// MaxPathLength bounds the pathnames LookupPath accepts. The historical
// kernel copied paths through a fixed buffer and this driver keeps the same
// limit rather than inventing a new one.
const MaxPathLength = 255

// LookupPath resolves an absolute pathname to the inumber of the object it
// names.
//
// Only absolute paths are supported. Repeated separators collapse, so
// "//bin///ls" and "/bin/ls" resolve identically. "." and ".." get no special
// treatment: V6 directories carry them as literal entries, so they resolve
// exactly when they are physically present in the directory data. The root
// path resolves to RootInumber without touching the disk.
func (fs *FileSystem) LookupPath(path string) (Inumber, error) {
	if path == "" {
		return 0, v6disk.ErrInvalidArgument.WithMessage("pathname is empty")
	}
	if !strings.HasPrefix(path, PathSeparator) {
		return 0, v6disk.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("pathname %q is not absolute", path),
		)
	}
	if len(path) > MaxPathLength {
		return 0, v6disk.ErrNameTooLong.WithMessage(
			fmt.Sprintf("pathname exceeds %d bytes", MaxPathLength),
		)
	}

	current := Inumber(RootInumber)

	for _, component := range strings.Split(path, PathSeparator) {
		if component == "" {
			// Leading, trailing, or doubled separator.
			continue
		}

		// The walk only descends through directories; this also validates the
		// root itself before the first component is looked up.
		dirInode, err := fs.InodeAt(current)
		if err != nil {
			return 0, err
		}
		if !dirInode.IsDir() {
			return 0, v6disk.ErrNotADirectory.WithMessage(
				fmt.Sprintf(
					"inode %d is not a directory while resolving %q",
					current,
					path,
				),
			)
		}

		dirent, err := fs.FindDirent(current, component)
		if err != nil {
			return 0, err
		}
		current = dirent.Inumber
	}

	return current, nil
}
