// Package testing provides fixtures for building syntactically valid Unix V6
// disk images in memory. Nothing in here is safe for production use; every
// function takes a testing.T and fails the test on any inconsistency.
package testing

import (
	"encoding/binary"
	"testing"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/v6disk/file_systems/common/diskimg"
	fs "github.com/dargueta/v6disk/file_systems/unixv6"
	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/require"
)

// DirentSpec describes one directory entry to put into a fixture directory.
// A zero Inumber produces a free slot, which lookups must skip.
type DirentSpec struct {
	Name    string
	Inumber uint16
}

// ImageBuilder assembles a V6 disk image sector by sector. The zero value is
// not usable; create one with NewImageBuilder.
//
// The builder hands out data sectors from a bitmap allocator so that fixtures
// never accidentally overlap the boot block, superblock, or ilist, and
// double-allocation of a sector fails the test immediately.
type ImageBuilder struct {
	image        []byte
	usedSectors  bitmap.Bitmap
	totalSectors uint
	ilistSectors uint
}

// NewImageBuilder creates a builder for an image of `totalSectors` sectors
// whose ilist spans `ilistSectors` sectors. The superblock is filled in
// immediately; everything else starts zeroed.
func NewImageBuilder(t *testing.T, totalSectors, ilistSectors uint) *ImageBuilder {
	require.Greater(t, ilistSectors, uint(0), "ilist can't be empty")
	require.Greater(
		t,
		totalSectors,
		fs.InodeStartSector+ilistSectors,
		"image has no room for data sectors",
	)

	builder := &ImageBuilder{
		image:        make([]byte, totalSectors*diskimg.SectorSize),
		usedSectors:  bitmap.New(int(totalSectors)),
		totalSectors: totalSectors,
		ilistSectors: ilistSectors,
	}

	// Boot block, superblock, and the ilist are never handed out as data.
	for sector := uint(0); sector < fs.InodeStartSector+ilistSectors; sector++ {
		builder.usedSectors.Set(int(sector), true)
	}

	writer := bytewriter.New(builder.sector(fs.SuperblockSector))
	binary.Write(writer, binary.LittleEndian, uint16(ilistSectors))
	binary.Write(writer, binary.LittleEndian, uint16(totalSectors))
	return builder
}

func (builder *ImageBuilder) sector(num uint) []byte {
	start := num * diskimg.SectorSize
	return builder.image[start : start+diskimg.SectorSize]
}

// AllocSector reserves one free data sector and returns its number.
func (builder *ImageBuilder) AllocSector(t *testing.T) uint16 {
	for sector := 0; sector < int(builder.totalSectors); sector++ {
		if !builder.usedSectors.Get(sector) {
			builder.usedSectors.Set(sector, true)
			return uint16(sector)
		}
	}
	t.Fatalf("image is full: all %d sectors allocated", builder.totalSectors)
	return 0
}

// WriteSector overwrites one sector with the given data, padding with zeroes
// to a full sector.
func (builder *ImageBuilder) WriteSector(t *testing.T, sector uint16, data []byte) {
	require.LessOrEqual(
		t, len(data), diskimg.SectorSize, "data doesn't fit in one sector")
	require.Less(t, uint(sector), builder.totalSectors, "sector out of range")

	target := builder.sector(uint(sector))
	copy(target, data)
	for i := len(data); i < diskimg.SectorSize; i++ {
		target[i] = 0
	}
}

// WriteInode serializes an inode record into its ilist slot. The inumber must
// be within the ilist declared at construction.
func (builder *ImageBuilder) WriteInode(
	t *testing.T, inumber uint16, inode fs.RawInode,
) {
	require.GreaterOrEqual(t, inumber, uint16(1), "inumbers are 1-indexed")
	require.LessOrEqual(
		t,
		uint(inumber),
		builder.ilistSectors*fs.InodesPerSector,
		"inumber past the end of the ilist",
	)

	sector := fs.InodeStartSector + (uint(inumber)-1)/fs.InodesPerSector
	offset := ((uint(inumber) - 1) % fs.InodesPerSector) * fs.InodeSize
	slot := builder.sector(sector)[offset : offset+fs.InodeSize]

	writer := bytewriter.New(slot)
	binary.Write(writer, binary.LittleEndian, inode.Mode)
	writer.Write([]byte{inode.Nlinks, inode.UserID, inode.GID, inode.Size0})
	binary.Write(writer, binary.LittleEndian, inode.Size1)
	binary.Write(writer, binary.LittleEndian, inode.Addr)
	// PDP-11 longs: high-order word first.
	binary.Write(writer, binary.LittleEndian, uint16(inode.Atime>>16))
	binary.Write(writer, binary.LittleEndian, uint16(inode.Atime))
	binary.Write(writer, binary.LittleEndian, uint16(inode.Mtime>>16))
	binary.Write(writer, binary.LittleEndian, uint16(inode.Mtime))
}

// AddFile lays a file's contents out on disk and writes its inode. The
// addressing scheme is picked automatically: direct slots if the data fits in
// eight sectors and `mode` doesn't force FlagLargeFile, the indirect scheme
// otherwise. Returns the inode as written.
func (builder *ImageBuilder) AddFile(
	t *testing.T, inumber uint16, mode uint16, contents []byte,
) fs.RawInode {
	require.Less(
		t, len(contents), 1<<24, "file size doesn't fit in the 24-bit size field")

	numBlocks := (len(contents) + diskimg.SectorSize - 1) / diskimg.SectorSize
	dataSectors := make([]uint16, numBlocks)

	for i := 0; i < numBlocks; i++ {
		start := i * diskimg.SectorSize
		end := start + diskimg.SectorSize
		if end > len(contents) {
			end = len(contents)
		}

		dataSectors[i] = builder.AllocSector(t)
		builder.WriteSector(t, dataSectors[i], contents[start:end])
	}

	var addr [fs.NumDirectBlocks]uint16
	if numBlocks <= fs.NumDirectBlocks && mode&fs.FlagLargeFile == 0 {
		copy(addr[:], dataSectors)
	} else {
		mode |= fs.FlagLargeFile
		addr = builder.layOutIndirectBlocks(t, dataSectors)
	}

	inode := fs.RawInode{
		Mode:   mode | fs.FlagFileAllocated,
		Nlinks: 1,
		Size0:  uint8(len(contents) >> 16),
		Size1:  uint16(len(contents)),
		Addr:   addr,
	}
	builder.WriteInode(t, inumber, inode)
	return inode
}

// AddDirectory serializes the given entries as a directory file and writes
// its inode.
func (builder *ImageBuilder) AddDirectory(
	t *testing.T, inumber uint16, entries []DirentSpec,
) fs.RawInode {
	contents := make([]byte, len(entries)*fs.DirentSize)
	writer := bytewriter.New(contents)

	for _, entry := range entries {
		require.LessOrEqual(
			t, len(entry.Name), fs.NameLength, "entry name %q too long", entry.Name)

		var name [fs.NameLength]byte
		copy(name[:], entry.Name)
		binary.Write(writer, binary.LittleEndian, entry.Inumber)
		writer.Write(name[:])
	}

	return builder.AddFile(
		t, inumber, fs.FlagIsDirectory|0o777, contents)
}

// layOutIndirectBlocks builds the indirect sector chain for a large file and
// returns the eight Addr slots for its inode.
func (builder *ImageBuilder) layOutIndirectBlocks(
	t *testing.T, dataSectors []uint16,
) [fs.NumDirectBlocks]uint16 {
	var addr [fs.NumDirectBlocks]uint16

	// The first seven slots each cover AddressesPerSector blocks directly.
	slot := 0
	for len(dataSectors) > 0 && slot < fs.NumDirectBlocks-1 {
		count := len(dataSectors)
		if count > fs.AddressesPerSector {
			count = fs.AddressesPerSector
		}

		addr[slot] = builder.writeAddressSector(t, dataSectors[:count])
		dataSectors = dataSectors[count:]
		slot++
	}

	if len(dataSectors) == 0 {
		return addr
	}

	// Whatever is left goes through the doubly indirect slot.
	firstLevel := make([]uint16, 0, fs.AddressesPerSector)
	for len(dataSectors) > 0 {
		count := len(dataSectors)
		if count > fs.AddressesPerSector {
			count = fs.AddressesPerSector
		}

		firstLevel = append(firstLevel, builder.writeAddressSector(t, dataSectors[:count]))
		dataSectors = dataSectors[count:]
	}

	require.LessOrEqual(
		t,
		len(firstLevel),
		fs.AddressesPerSector,
		"file too large even for double indirection",
	)
	addr[fs.NumDirectBlocks-1] = builder.writeAddressSector(t, firstLevel)
	return addr
}

// writeAddressSector allocates a sector, fills it with the given 16-bit block
// addresses, and returns its number.
func (builder *ImageBuilder) writeAddressSector(
	t *testing.T, addresses []uint16,
) uint16 {
	data := make([]byte, diskimg.SectorSize)
	writer := bytewriter.New(data)
	binary.Write(writer, binary.LittleEndian, addresses)

	sector := builder.AllocSector(t)
	builder.WriteSector(t, sector, data)
	return sector
}

// Bytes returns the raw image. The slice aliases the builder's storage, so
// tests can corrupt specific bytes after building.
func (builder *ImageBuilder) Bytes() []byte {
	return builder.image
}

// Device wraps the image in an in-memory sector device.
func (builder *ImageBuilder) Device(t *testing.T) diskimg.Device {
	device, err := diskimg.NewFromBytes(builder.image)
	require.NoError(t, err, "image should always be sector-aligned")
	return device
}

// FileSystem mounts the image and returns the handle.
func (builder *ImageBuilder) FileSystem(t *testing.T) *fs.FileSystem {
	handle := fs.NewFileSystem(builder.Device(t))
	require.NoError(t, handle.Mount(), "fixture image failed to mount")
	return handle
}
