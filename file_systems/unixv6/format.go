package unixv6

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dargueta/v6disk"
)

// On-disk layout constants. These must match the Sixth Edition sources
// bit-for-bit; every offset computation in this package derives from them.
const SectorSize = 512
const InodeSize = 32
const DirentSize = 16
const NameLength = 14

const InodesPerSector = SectorSize / InodeSize
const AddressesPerSector = SectorSize / 2

// Sector 0 is the boot block, sector 1 the superblock. The ilist follows
// immediately, running for Superblock.InodeListSectors sectors.
const SuperblockSector = 1
const InodeStartSector = 2

// RootInumber is the inode number of the root directory. Inumbers are
// 1-indexed; 0 marks a free directory slot and is never a valid inumber.
const RootInumber = 1

// Inode mode flags, from ino.h.
const FlagFileAllocated = 0o100000
const FlagTypeMask = 0o060000
const FlagIsDirectory = 0o040000
const FlagCharDevice = 0o020000
const FlagBlockDevice = 0o060000
const FlagLargeFile = 0o010000
const FlagSetUIDOnExecution = 0o004000
const FlagSetGIDOnExecution = 0o002000
const FlagSaveSwappedText = 0o001000
const FlagOwnerRead = 0o000400
const FlagOwnerWrite = 0o000200
const FlagOwnerExec = 0o000100

// NumDirectBlocks is the number of block addresses stored directly in an
// inode. For small files these are data sectors; for large files the first
// seven are singly indirect and the eighth is doubly indirect.
const NumDirectBlocks = 8

// SingleIndirectCoverage is the number of file blocks addressable through the
// seven singly indirect slots of a large inode. Block indexes at or past this
// value go through the doubly indirect slot.
const SingleIndirectCoverage = 7 * AddressesPerSector

type Inumber uint16
type PhysicalBlock uint16

// RawInode is the on-disk inode record, 32 bytes.
//
// Size0 and Size1 together form the 24-bit file size: Size0 holds the high
// byte and Size1 the low word. Addr holds the eight block addresses whose
// meaning depends on FlagLargeFile; an address of 0 always means "no block".
type RawInode struct {
	Mode   uint16
	Nlinks uint8
	UserID uint8
	GID    uint8
	Size0  uint8
	Size1  uint16
	Addr   [NumDirectBlocks]uint16
	Atime  uint32
	Mtime  uint32
}

// RawDirent is the on-disk directory entry, 16 bytes: a 2-byte inumber
// followed by a 14-byte name field. The name is NOT null-terminated when it
// fills the field exactly.
type RawDirent struct {
	Inumber Inumber
	Name    [NameLength]byte
}

// Superblock holds the handful of fields from the filsys record this driver
// actually interprets. Everything else in sector 1 (free list, inode cache,
// lock bytes) only matters to a writable implementation.
type Superblock struct {
	// InodeListSectors is s_isize, the length of the ilist in sectors. It
	// bounds the set of valid inumbers.
	InodeListSectors uint16
	// TotalSectors is s_fsize, the size of the whole volume in sectors.
	TotalSectors uint16
}

// MaxInumber gives the highest valid inumber on a volume with this superblock.
//
// An ilist of 4096 sectors holds 65536 inode slots, one more than an inumber
// can express. The bound saturates at 65535 rather than wrapping: dirents
// store inumbers in 16 bits, so the last slot of such an ilist is unreachable
// anyway.
func (sb *Superblock) MaxInumber() Inumber {
	capacity := uint(sb.InodeListSectors) * InodesPerSector
	if capacity > math.MaxUint16 {
		return math.MaxUint16
	}
	return Inumber(capacity)
}

// DecodeSuperblock extracts the superblock fields from the raw contents of
// sector 1.
func DecodeSuperblock(buffer []byte) (Superblock, error) {
	if len(buffer) < 4 {
		return Superblock{}, v6disk.ErrInvalidFileSystem.WithMessage(
			fmt.Sprintf("superblock must be at least 4B, got %dB", len(buffer)),
		)
	}

	sb := Superblock{
		InodeListSectors: binary.LittleEndian.Uint16(buffer[0:2]),
		TotalSectors:     binary.LittleEndian.Uint16(buffer[2:4]),
	}
	if sb.InodeListSectors == 0 {
		return Superblock{}, v6disk.ErrInvalidFileSystem.WithMessage(
			"superblock declares an empty inode list")
	}
	return sb, nil
}

// DecodeInode extracts one on-disk inode record from a byte slice. The slice
// must be at least InodeSize bytes; field offsets are fixed by the format.
func DecodeInode(buffer []byte) (RawInode, error) {
	if len(buffer) < InodeSize {
		return RawInode{}, v6disk.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("inode record must be %dB, got %dB", InodeSize, len(buffer)),
		)
	}

	inode := RawInode{
		Mode:   binary.LittleEndian.Uint16(buffer[0:2]),
		Nlinks: buffer[2],
		UserID: buffer[3],
		GID:    buffer[4],
		Size0:  buffer[5],
		Size1:  binary.LittleEndian.Uint16(buffer[6:8]),
		Atime:  decodeTime(buffer[24:28]),
		Mtime:  decodeTime(buffer[28:32]),
	}
	for i := 0; i < NumDirectBlocks; i++ {
		inode.Addr[i] = binary.LittleEndian.Uint16(buffer[8+2*i : 10+2*i])
	}
	return inode, nil
}

// DecodeDirent extracts one directory entry from a byte slice of at least
// DirentSize bytes.
func DecodeDirent(buffer []byte) (RawDirent, error) {
	if len(buffer) < DirentSize {
		return RawDirent{}, v6disk.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("dirent record must be %dB, got %dB", DirentSize, len(buffer)),
		)
	}

	dirent := RawDirent{
		Inumber: Inumber(binary.LittleEndian.Uint16(buffer[0:2])),
	}
	copy(dirent.Name[:], buffer[2:DirentSize])
	return dirent, nil
}

// decodeTime reconstructs a PDP-11 long: two little-endian 16-bit words with
// the high-order word stored first.
func decodeTime(buffer []byte) uint32 {
	hi := binary.LittleEndian.Uint16(buffer[0:2])
	lo := binary.LittleEndian.Uint16(buffer[2:4])
	return uint32(hi)<<16 | uint32(lo)
}

// Size returns the file length in bytes. The on-disk size is a 24-bit value
// split across Size0 (high byte) and Size1 (low word).
func (inode *RawInode) Size() int64 {
	return int64(inode.Size0)<<16 | int64(inode.Size1)
}

// IsAllocated reports whether this inode is in use. Fetching an unallocated
// inode is treated as "no such file" by the lookup layer.
func (inode *RawInode) IsAllocated() bool {
	return inode.Mode&FlagFileAllocated != 0
}

// IsDir reports whether this inode describes a directory.
func (inode *RawInode) IsDir() bool {
	return inode.Mode&FlagTypeMask == FlagIsDirectory
}

// IsLarge reports whether this inode uses the indirect addressing scheme.
func (inode *RawInode) IsLarge() bool {
	return inode.Mode&FlagLargeFile != 0
}

// NameString returns the entry's name as a Go string, trimmed at the first
// NUL. Names that occupy the full 14-byte field come back unmodified.
func (dirent *RawDirent) NameString() string {
	for i, b := range dirent.Name {
		if b == 0 {
			return string(dirent.Name[:i])
		}
	}
	return string(dirent.Name[:])
}

// ConvertFSFlagsToStandard takes inode mode flags found in the on-disk
// representation and converts them to their standardized equivalents.
// Unrecognized flags are ignored.
func ConvertFSFlagsToStandard(rawFlags uint16) uint32 {
	// The permission bits already sit where the standard constants expect
	// them; only the type and setuid/setgid bits need translating.
	stdFlags := uint32(rawFlags) & uint32(v6disk.S_IRWXU|v6disk.S_IRWXG|v6disk.S_IRWXO)

	switch rawFlags & FlagTypeMask {
	case FlagIsDirectory:
		stdFlags |= v6disk.S_IFDIR
	case FlagCharDevice:
		stdFlags |= v6disk.S_IFCHR
	case FlagBlockDevice:
		stdFlags |= v6disk.S_IFBLK
	default:
		stdFlags |= v6disk.S_IFREG
	}
	if rawFlags&FlagSetUIDOnExecution != 0 {
		stdFlags |= v6disk.S_ISUID
	}
	if rawFlags&FlagSetGIDOnExecution != 0 {
		stdFlags |= v6disk.S_ISGID
	}
	if rawFlags&FlagSaveSwappedText != 0 {
		stdFlags |= v6disk.S_ISVTX
	}
	return stdFlags
}
