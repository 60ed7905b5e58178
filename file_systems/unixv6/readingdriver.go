// This file implements the ReadingDriver interface for the UNIX V6 file
// system.
package unixv6

import (
	"fmt"
	"time"

	"github.com/dargueta/v6disk"
	"github.com/dargueta/v6disk/file_systems/common/diskimg"
)

// fsEpoch is when V6 timestamps start counting. By the Sixth Edition the
// epoch had settled on the modern one.
var fsEpoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// DirectoryEntry pairs a directory entry's name with the stat information of
// the inode it points at. It implements [v6disk.DirectoryEntry].
type DirectoryEntry struct {
	name string
	stat v6disk.FileStat
}

func (dirent *DirectoryEntry) Name() string {
	return dirent.name
}

func (dirent *DirectoryEntry) Stat() v6disk.FileStat {
	return dirent.stat
}

// FileStatFromInode converts an on-disk inode record into the standardized
// stat structure.
func FileStatFromInode(inumber Inumber, inode *RawInode) v6disk.FileStat {
	size := inode.Size()
	return v6disk.FileStat{
		InodeNumber:  uint64(inumber),
		Nlinks:       uint64(inode.Nlinks),
		ModeFlags:    ConvertFSFlagsToStandard(inode.Mode),
		Uid:          uint32(inode.UserID),
		Gid:          uint32(inode.GID),
		Size:         size,
		BlockSize:    SectorSize,
		NumBlocks:    (size + SectorSize - 1) / SectorSize,
		LastAccessed: fsEpoch.Add(time.Second * time.Duration(inode.Atime)),
		LastModified: fsEpoch.Add(time.Second * time.Duration(inode.Mtime)),
	}
}

// ReadFile returns the entire contents of the file at the given path.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	inumber, err := fs.LookupPath(path)
	if err != nil {
		return nil, err
	}

	inode, err := fs.InodeAt(inumber)
	if err != nil {
		return nil, err
	}
	if inode.IsDir() {
		return nil, v6disk.ErrIsADirectory.WithMessage(path)
	}

	size := inode.Size()
	contents := make([]byte, 0, size)
	buffer := make([]byte, diskimg.SectorSize)

	numBlocks := int((size + SectorSize - 1) / SectorSize)
	for blockNum := 0; blockNum < numBlocks; blockNum++ {
		validBytes, err := fs.fileBlockFromInode(&inode, blockNum, buffer)
		if err != nil {
			return nil, err
		}
		contents = append(contents, buffer[:validBytes]...)
	}
	return contents, nil
}

// Stat returns information about the object at the given path.
func (fs *FileSystem) Stat(path string) (v6disk.FileStat, error) {
	inumber, err := fs.LookupPath(path)
	if err != nil {
		return v6disk.FileStat{}, err
	}

	inode, err := fs.InodeAt(inumber)
	if err != nil {
		return v6disk.FileStat{}, err
	}
	return FileStatFromInode(inumber, &inode), nil
}

// ReadDir lists the active entries of the directory at the given path in
// on-disk order. Free slots are skipped; "." and ".." are real entries in V6
// and are included.
func (fs *FileSystem) ReadDir(path string) ([]v6disk.DirectoryEntry, error) {
	dirInumber, err := fs.LookupPath(path)
	if err != nil {
		return nil, err
	}

	dirInode, err := fs.InodeAt(dirInumber)
	if err != nil {
		return nil, err
	}
	if !dirInode.IsDir() {
		return nil, v6disk.ErrNotADirectory.WithMessage(path)
	}

	dirSize := dirInode.Size()
	if dirSize%DirentSize != 0 {
		return nil, corruptDirectoryError(dirInumber, dirSize)
	}

	entries := []v6disk.DirectoryEntry{}
	buffer := make([]byte, diskimg.SectorSize)
	bytesScanned := int64(0)

	for blockNum := 0; bytesScanned < dirSize; blockNum++ {
		validBytes, err := fs.fileBlockFromInode(&dirInode, blockNum, buffer)
		if err != nil {
			return nil, err
		}
		if validBytes%DirentSize != 0 {
			return nil, v6disk.ErrFileSystemCorrupted.WithMessage(
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
				return nil, err
			}
			if dirent.Inumber == 0 {
				continue
			}

			inode, err := fs.InodeAt(dirent.Inumber)
			if err != nil {
				return nil, err
			}
			entries = append(entries, &DirectoryEntry{
				name: dirent.NameString(),
				stat: FileStatFromInode(dirent.Inumber, &inode),
			})
		}

		bytesScanned += int64(validBytes)
	}

	return entries, nil
}

// SameFile reports whether two stat results describe the same on-disk object.
func (fs *FileSystem) SameFile(fi1, fi2 v6disk.FileStat) bool {
	return fi1.InodeNumber == fi2.InodeNumber
}
