package unixv6

import (
	"fmt"

	"github.com/dargueta/v6disk"
	"github.com/dargueta/v6disk/file_systems/common/diskimg"
)

// FileBlock reads one logical block of the file with the given inumber into
// buffer and returns the number of valid bytes in it.
//
// The buffer must hold at least one sector. A full sector is always read; the
// count is short only on the file's last block, where it equals the bytes of
// file remaining. Bytes past the returned count are whatever the sector held
// on disk and must not be interpreted as file content.
//
// An empty file yields a count of 0 for any block number. That is not an
// error: there is simply nothing to read.
func (fs *FileSystem) FileBlock(
	inumber Inumber, fileBlockNum int, buffer []byte,
) (int, error) {
	if len(buffer) < diskimg.SectorSize {
		return 0, v6disk.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"block buffer must be at least %dB, got %dB",
				diskimg.SectorSize,
				len(buffer),
			),
		)
	}

	inode, err := fs.InodeAt(inumber)
	if err != nil {
		return 0, err
	}
	return fs.fileBlockFromInode(&inode, fileBlockNum, buffer)
}

// fileBlockFromInode is FileBlock for callers that already hold the inode,
// like the directory scanner walking multiple blocks of one directory.
func (fs *FileSystem) fileBlockFromInode(
	inode *RawInode, fileBlockNum int, buffer []byte,
) (int, error) {
	size := inode.Size()
	if size == 0 {
		return 0, nil
	}

	if fileBlockNum < 0 {
		return 0, v6disk.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("file block number can't be negative, got %d", fileBlockNum),
		)
	}
	numBlocks := int((size + SectorSize - 1) / SectorSize)
	if fileBlockNum >= numBlocks {
		return 0, v6disk.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf(
				"block %d not in [0, %d) for file of %d bytes",
				fileBlockNum,
				numBlocks,
				size,
			),
		)
	}

	sector, err := fs.BlockAt(inode, fileBlockNum)
	if err != nil {
		return 0, err
	}

	err = fs.readSector(sector, buffer[:diskimg.SectorSize])
	if err != nil {
		return 0, v6disk.ErrIOFailed.Wrap(err).WithMessage(
			fmt.Sprintf("can't read sector %d (block %d of file)", sector, fileBlockNum),
		)
	}

	// Every block but the last is full. The range check above guarantees the
	// remainder is strictly positive.
	remaining := size - int64(fileBlockNum)*SectorSize
	if remaining >= SectorSize {
		return SectorSize, nil
	}
	return int(remaining), nil
}
