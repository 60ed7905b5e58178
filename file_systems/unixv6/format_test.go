package unixv6_test

import (
	"encoding/binary"
	"testing"

	"github.com/dargueta/v6disk"
	fs "github.com/dargueta/v6disk/file_systems/unixv6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSuperblock(t *testing.T) {
	buffer := make([]byte, fs.SectorSize)
	binary.LittleEndian.PutUint16(buffer[0:2], 20)
	binary.LittleEndian.PutUint16(buffer[2:4], 4872)

	sb, err := fs.DecodeSuperblock(buffer)
	require.NoError(t, err)
	assert.EqualValues(t, 20, sb.InodeListSectors)
	assert.EqualValues(t, 4872, sb.TotalSectors)
	assert.EqualValues(t, 20*fs.InodesPerSector, sb.MaxInumber())
}

// The largest ilist the superblock can declare holds 65536 inode slots; the
// inumber bound must saturate at 65535, not wrap to 0.
func TestSuperblockMaxInumber__Saturates(t *testing.T) {
	sb := fs.Superblock{InodeListSectors: 4096, TotalSectors: 4200}
	assert.EqualValues(t, 65535, sb.MaxInumber())

	sb = fs.Superblock{InodeListSectors: 4095, TotalSectors: 4200}
	assert.EqualValues(t, 4095*fs.InodesPerSector, sb.MaxInumber())
}

func TestDecodeSuperblock__EmptyIlist(t *testing.T) {
	buffer := make([]byte, fs.SectorSize)
	binary.LittleEndian.PutUint16(buffer[2:4], 100)

	_, err := fs.DecodeSuperblock(buffer)
	assert.ErrorIs(t, err, v6disk.ErrInvalidFileSystem)
}

func TestDecodeSuperblock__ShortBuffer(t *testing.T) {
	_, err := fs.DecodeSuperblock([]byte{1, 0})
	assert.ErrorIs(t, err, v6disk.ErrInvalidFileSystem)
}

func TestDecodeInode(t *testing.T) {
	buffer := make([]byte, fs.InodeSize)
	binary.LittleEndian.PutUint16(buffer[0:2], fs.FlagFileAllocated|fs.FlagIsDirectory|0o755)
	buffer[2] = 3    // nlinks
	buffer[3] = 7    // uid
	buffer[4] = 1    // gid
	buffer[5] = 0x02 // size0, high byte of the 24-bit size
	binary.LittleEndian.PutUint16(buffer[6:8], 0x0304)
	for i := 0; i < fs.NumDirectBlocks; i++ {
		binary.LittleEndian.PutUint16(buffer[8+2*i:10+2*i], uint16(100+i))
	}
	// mtime 0x00010002 as two little-endian words, high word first
	binary.LittleEndian.PutUint16(buffer[28:30], 0x0001)
	binary.LittleEndian.PutUint16(buffer[30:32], 0x0002)

	inode, err := fs.DecodeInode(buffer)
	require.NoError(t, err)

	assert.True(t, inode.IsAllocated())
	assert.True(t, inode.IsDir())
	assert.False(t, inode.IsLarge())
	assert.EqualValues(t, 3, inode.Nlinks)
	assert.EqualValues(t, 7, inode.UserID)
	assert.EqualValues(t, 1, inode.GID)

	// The size must reconstruct as high16<<16 | low16.
	assert.EqualValues(t, 0x02<<16|0x0304, inode.Size())

	for i := 0; i < fs.NumDirectBlocks; i++ {
		assert.EqualValues(t, 100+i, inode.Addr[i], "address slot %d is wrong", i)
	}
	assert.EqualValues(t, 0x00010002, inode.Mtime)
}

func TestDecodeInode__ShortBuffer(t *testing.T) {
	_, err := fs.DecodeInode(make([]byte, fs.InodeSize-1))
	assert.ErrorIs(t, err, v6disk.ErrInvalidArgument)
}

func TestDecodeDirent(t *testing.T) {
	buffer := make([]byte, fs.DirentSize)
	binary.LittleEndian.PutUint16(buffer[0:2], 42)
	copy(buffer[2:], "motd")

	dirent, err := fs.DecodeDirent(buffer)
	require.NoError(t, err)
	assert.EqualValues(t, 42, dirent.Inumber)
	assert.Equal(t, "motd", dirent.NameString())
}

// A name filling the whole field has no terminator and must come back intact.
func TestDecodeDirent__FullWidthName(t *testing.T) {
	buffer := make([]byte, fs.DirentSize)
	binary.LittleEndian.PutUint16(buffer[0:2], 7)
	copy(buffer[2:], "fourteen-chars")

	dirent, err := fs.DecodeDirent(buffer)
	require.NoError(t, err)
	assert.Equal(t, "fourteen-chars", dirent.NameString())
	assert.Len(t, dirent.NameString(), fs.NameLength)
}

func TestConvertFSFlagsToStandard(t *testing.T) {
	assert.EqualValues(
		t,
		v6disk.S_IFDIR|v6disk.S_IRWXU,
		fs.ConvertFSFlagsToStandard(fs.FlagFileAllocated|fs.FlagIsDirectory|0o700),
	)
	assert.EqualValues(
		t,
		uint32(v6disk.S_IFREG|0o644),
		fs.ConvertFSFlagsToStandard(fs.FlagFileAllocated|0o644),
	)
	assert.EqualValues(
		t,
		v6disk.S_IFCHR|v6disk.S_IRUSR|v6disk.S_IWUSR,
		fs.ConvertFSFlagsToStandard(fs.FlagFileAllocated|fs.FlagCharDevice|0o600),
	)
	assert.EqualValues(
		t,
		uint32(v6disk.S_IFREG|v6disk.S_ISUID|0o755),
		fs.ConvertFSFlagsToStandard(fs.FlagFileAllocated|fs.FlagSetUIDOnExecution|0o755),
	)
}
