package unixv6

import (
	"fmt"

	"github.com/dargueta/v6disk"
	"github.com/dargueta/v6disk/file_systems/common/diskimg"
)

// FindDirent searches the directory with inumber dirInumber for an entry
// named `name` and returns a copy of it.
//
// The search name is compared against the full 14-byte on-disk name field,
// padded with NULs, so names that exactly fill the field compare correctly
// despite having no terminator. Free slots (inumber 0) are skipped. If the
// directory somehow contains duplicate active entries for the same name, the
// first one in on-disk order wins.
func (fs *FileSystem) FindDirent(dirInumber Inumber, name string) (RawDirent, error) {
	// A name longer than the field can't be on disk, so don't bother looking.
	if len(name) > NameLength {
		return RawDirent{}, v6disk.ErrNameTooLong.WithMessage(
			fmt.Sprintf("%q is longer than %d bytes", name, NameLength),
		)
	}

	var target [NameLength]byte
	copy(target[:], name)

	dirInode, err := fs.InodeAt(dirInumber)
	if err != nil {
		return RawDirent{}, err
	}
	if !dirInode.IsDir() {
		return RawDirent{}, v6disk.ErrNotADirectory.WithMessage(
			fmt.Sprintf("inode %d is not a directory (mode %06o)", dirInumber, dirInode.Mode),
		)
	}

	dirSize := dirInode.Size()
	if dirSize == 0 {
		// Vacuously absent. V6 directories always hold "." and ".." so an
		// empty one is odd, but it isn't corrupt.
		return RawDirent{}, notFoundError(dirInumber, name)
	}
	if dirSize%DirentSize != 0 {
		return RawDirent{}, corruptDirectoryError(dirInumber, dirSize)
	}

	buffer := make([]byte, diskimg.SectorSize)
	bytesScanned := int64(0)

	for blockNum := 0; bytesScanned < dirSize; blockNum++ {
		validBytes, err := fs.fileBlockFromInode(&dirInode, blockNum, buffer)
		if err != nil {
			return RawDirent{}, err
		}
		if validBytes%DirentSize != 0 {
			return RawDirent{}, v6disk.ErrFileSystemCorrupted.WithMessage(
				fmt.Sprintf(
					"block %d of directory inode %d holds %d valid bytes, not a"+
						" multiple of the %dB entry size",
					blockNum,
					dirInumber,
					validBytes,
					DirentSize,
				),
			)
		}

		for offset := 0; offset < validBytes; offset += DirentSize {
			dirent, err := DecodeDirent(buffer[offset : offset+DirentSize])
			if err != nil {
				return RawDirent{}, err
			}
			if dirent.Inumber == 0 {
				// Free slot left behind by an unlink.
				continue
			}
			if dirent.Name == target {
				return dirent, nil
			}
		}

		bytesScanned += int64(validBytes)
	}

	return RawDirent{}, notFoundError(dirInumber, name)
}

func notFoundError(dirInumber Inumber, name string) error {
	return v6disk.ErrNotFound.WithMessage(
		fmt.Sprintf("no entry %q in directory inode %d", name, dirInumber),
	)
}

func corruptDirectoryError(dirInumber Inumber, size int64) error {
	return v6disk.ErrFileSystemCorrupted.WithMessage(
		fmt.Sprintf(
			"directory inode %d size %d isn't a multiple of the %dB entry size",
			dirInumber,
			size,
			DirentSize,
		),
	)
}
