package unixv6

import (
	"fmt"

	"github.com/dargueta/v6disk"
	c "github.com/dargueta/v6disk/file_systems/common"
	"github.com/dargueta/v6disk/file_systems/common/diskimg"
)

// FileSystem is a read-only handle on a mounted Unix V6 volume. It owns no
// state beyond the parsed superblock: every operation fetches its own inode
// and sector buffers, so nothing is cached between calls and a handle may be
// shared freely across goroutines.
type FileSystem struct {
	device     diskimg.Device
	superblock Superblock
	isMounted  bool
}

// NewFileSystem creates an unmounted handle over a sector device. Call Mount
// before using it.
func NewFileSystem(device diskimg.Device) *FileSystem {
	return &FileSystem{device: device}
}

// Mount reads and validates the superblock. Mounting an already-mounted
// handle is a no-op; there are no mount flags to disagree over since the
// driver is unconditionally read-only.
func (fs *FileSystem) Mount() error {
	if fs.isMounted {
		return nil
	}

	buffer := make([]byte, diskimg.SectorSize)
	err := fs.device.ReadSector(SuperblockSector, buffer)
	if err != nil {
		return v6disk.ErrIOFailed.Wrap(err)
	}

	superblock, err := DecodeSuperblock(buffer)
	if err != nil {
		return err
	}

	// The ilist must fit on the device, or every inode fetch near the end of
	// the declared range would walk off the image.
	ilistEnd := uint(InodeStartSector) + uint(superblock.InodeListSectors)
	if ilistEnd > fs.device.TotalSectors() {
		return v6disk.ErrInvalidFileSystem.WithMessage(
			fmt.Sprintf(
				"superblock declares %d ilist sectors but the image only has %d sectors",
				superblock.InodeListSectors,
				fs.device.TotalSectors(),
			),
		)
	}

	fs.superblock = superblock
	fs.isMounted = true
	return nil
}

// Unmount releases the handle. There is never anything to flush.
func (fs *FileSystem) Unmount() error {
	fs.isMounted = false
	fs.superblock = Superblock{}
	return nil
}

// Superblock returns a copy of the parsed superblock.
func (fs *FileSystem) Superblock() (Superblock, error) {
	if !fs.isMounted {
		return Superblock{}, v6disk.ErrNotMounted.WithMessage("file system is not mounted")
	}
	return fs.superblock, nil
}

// readSector reads one absolute sector from the backing device into buffer.
// The buffer must be exactly one sector. Device errors already carry the
// ErrIOFailed sentinel, so they pass through unchanged.
func (fs *FileSystem) readSector(sector PhysicalBlock, buffer []byte) error {
	return fs.device.ReadSector(c.PhysicalBlock(sector), buffer)
}
