package unixv6

import (
	"encoding/binary"
	"fmt"

	"github.com/dargueta/v6disk"
	"github.com/dargueta/v6disk/file_systems/common/diskimg"
)

// InodeAt fetches the on-disk inode record with the given inumber.
//
// Valid inumbers run from RootInumber (1) through the capacity of the ilist
// declared in the superblock. Fetching an unallocated inode fails with
// ErrNotFound, matching what a path lookup would report for a file that
// doesn't exist.
func (fs *FileSystem) InodeAt(inumber Inumber) (RawInode, error) {
	if !fs.isMounted {
		return RawInode{}, v6disk.ErrNotMounted.WithMessage("file system is not mounted")
	}
	if inumber < RootInumber || inumber > fs.superblock.MaxInumber() {
		return RawInode{}, v6disk.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf(
				"invalid inumber %d, must be in [%d, %d]",
				inumber,
				RootInumber,
				fs.superblock.MaxInumber(),
			),
		)
	}

	// Inumbers are 1-indexed on disk, so all offset math is on inumber - 1.
	sector := PhysicalBlock(InodeStartSector + (uint(inumber)-1)/InodesPerSector)
	offset := ((uint(inumber) - 1) % InodesPerSector) * InodeSize

	buffer := make([]byte, diskimg.SectorSize)
	err := fs.readSector(sector, buffer)
	if err != nil {
		return RawInode{}, v6disk.ErrIOFailed.Wrap(err).WithMessage(
			fmt.Sprintf("can't read ilist sector %d for inode %d", sector, inumber),
		)
	}

	inode, err := DecodeInode(buffer[offset : offset+InodeSize])
	if err != nil {
		return RawInode{}, err
	}

	if !inode.IsAllocated() {
		return RawInode{}, v6disk.ErrNotFound.WithMessage(
			fmt.Sprintf("inode %d is not allocated (mode %06o)", inumber, inode.Mode),
		)
	}
	return inode, nil
}

// BlockAt resolves a logical block index within a file to the physical sector
// holding that block's data.
//
// Indexes at or past the end of the file fail with ErrArgumentOutOfRange. A
// block inside the file whose address chain hits a zero pointer at any level
// is a hole; V6 never wrote those through the normal write path, and rather
// than synthesize a zero-filled sector this driver reports ErrNoData and lets
// the caller decide what a hole means.
func (fs *FileSystem) BlockAt(inode *RawInode, fileBlockNum int) (PhysicalBlock, error) {
	if fileBlockNum < 0 {
		return 0, v6disk.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("file block number can't be negative, got %d", fileBlockNum),
		)
	}

	size := inode.Size()
	if size == 0 {
		// An empty file has no blocks at all, index 0 included.
		return 0, v6disk.ErrNoData.WithMessage("file is empty")
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

	if !inode.IsLarge() {
		return fs.smallFileBlock(inode, fileBlockNum)
	}
	return fs.largeFileBlock(inode, fileBlockNum)
}

// smallFileBlock handles the direct addressing scheme: all eight Addr slots
// are data sectors.
func (fs *FileSystem) smallFileBlock(
	inode *RawInode, fileBlockNum int,
) (PhysicalBlock, error) {
	if fileBlockNum >= NumDirectBlocks {
		return 0, v6disk.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf(
				"block %d is past the %d direct slots of a small file",
				fileBlockNum,
				NumDirectBlocks,
			),
		)
	}

	sector := inode.Addr[fileBlockNum]
	if sector == 0 {
		return 0, holeError(fileBlockNum)
	}
	return PhysicalBlock(sector), nil
}

// largeFileBlock handles the indirect addressing scheme. Addr[0..6] each
// point at a sector of 256 data addresses; Addr[7] points at a sector of 256
// pointers to further such sectors. The first SingleIndirectCoverage blocks
// therefore take one extra read, everything past that takes two.
func (fs *FileSystem) largeFileBlock(
	inode *RawInode, fileBlockNum int,
) (PhysicalBlock, error) {
	if fileBlockNum < SingleIndirectCoverage {
		slot := fileBlockNum / AddressesPerSector
		offset := fileBlockNum % AddressesPerSector

		indirect := inode.Addr[slot]
		if indirect == 0 {
			return 0, holeError(fileBlockNum)
		}

		sector, err := fs.addressAt(PhysicalBlock(indirect), offset)
		if err != nil {
			return 0, err
		}
		if sector == 0 {
			return 0, holeError(fileBlockNum)
		}
		return sector, nil
	}

	// Doubly indirect region. Rebase the index past the seven singly indirect
	// ranges, then split it across the two remaining levels.
	doubleIndirect := inode.Addr[NumDirectBlocks-1]
	if doubleIndirect == 0 {
		return 0, holeError(fileBlockNum)
	}

	rebased := fileBlockNum - SingleIndirectCoverage
	firstLevel := rebased / AddressesPerSector
	secondLevel := rebased % AddressesPerSector

	indirect, err := fs.addressAt(PhysicalBlock(doubleIndirect), firstLevel)
	if err != nil {
		return 0, err
	}
	if indirect == 0 {
		return 0, holeError(fileBlockNum)
	}

	sector, err := fs.addressAt(indirect, secondLevel)
	if err != nil {
		return 0, err
	}
	if sector == 0 {
		return 0, holeError(fileBlockNum)
	}
	return sector, nil
}

// addressAt reads the indirect sector `sector` and returns the 16-bit block
// address stored at `index` within it.
func (fs *FileSystem) addressAt(
	sector PhysicalBlock, index int,
) (PhysicalBlock, error) {
	buffer := make([]byte, diskimg.SectorSize)
	err := fs.readSector(sector, buffer)
	if err != nil {
		return 0, v6disk.ErrIOFailed.Wrap(err).WithMessage(
			fmt.Sprintf("can't read indirect sector %d", sector),
		)
	}
	raw := binary.LittleEndian.Uint16(buffer[2*index : 2*index+2])
	return PhysicalBlock(raw), nil
}

func holeError(fileBlockNum int) error {
	return v6disk.ErrNoData.WithMessage(
		fmt.Sprintf("block %d of file is a hole", fileBlockNum),
	)
}
