// Package diskimg provides sector-oriented read access to raw disk images.
//
// A [Device] is the lowest layer file system drivers sit on: it knows nothing
// about any on-disk format, only how to hand back one sector at a time. All
// sector numbers are absolute and begin at 0.
package diskimg

import (
	"fmt"
	"io"
	"sync"

	"github.com/dargueta/v6disk"
	c "github.com/dargueta/v6disk/file_systems/common"
	"github.com/xaionaro-go/bytesextra"
)

// SectorSize is the size of a single disk sector, in bytes. Every device in
// this package deals exclusively in sectors of this size.
const SectorSize = 512

// Device is a read-only, sector-addressed view of a disk image.
//
// ReadSector fills `buffer` with the contents of the given sector. The buffer
// must be exactly [SectorSize] bytes; anything short of a full sector coming
// back from the underlying storage is an I/O error, never a partial result.
// ReadSector is safe to call concurrently from independent goroutines.
type Device interface {
	ReadSector(sector c.PhysicalBlock, buffer []byte) error
	TotalSectors() uint
}

type streamDevice struct {
	mu           sync.Mutex
	stream       io.ReadSeeker
	totalSectors uint
}

// New wraps any [io.ReadSeeker] as a sector [Device] with the given number of
// sectors. The stream must be at least `totalSectors * SectorSize` bytes long.
func New(stream io.ReadSeeker, totalSectors uint) Device {
	return &streamDevice{stream: stream, totalSectors: totalSectors}
}

// NewWithInferredSize wraps a stream as a sector [Device], determining the
// sector count from the stream's current length. The length must be an exact
// multiple of [SectorSize].
func NewWithInferredSize(stream io.ReadSeeker) (Device, error) {
	size, err := stream.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, v6disk.ErrIOFailed.Wrap(err)
	}
	if size%SectorSize != 0 {
		return nil, v6disk.ErrInvalidFileSystem.WithMessage(
			fmt.Sprintf(
				"image size %d isn't a multiple of the sector size (%d)",
				size,
				SectorSize,
			),
		)
	}
	return New(stream, uint(size)/SectorSize), nil
}

// NewFromBytes builds an in-memory sector [Device] directly on top of a byte
// slice. The slice is not copied; it must be an exact number of sectors.
func NewFromBytes(image []byte) (Device, error) {
	return NewWithInferredSize(bytesextra.NewReadWriteSeeker(image))
}

func (device *streamDevice) TotalSectors() uint {
	return device.totalSectors
}

func (device *streamDevice) ReadSector(
	sector c.PhysicalBlock, buffer []byte,
) error {
	if len(buffer) != SectorSize {
		return v6disk.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("sector buffer must be %dB, got %dB", SectorSize, len(buffer)),
		)
	}
	if uint(sector) >= device.totalSectors {
		return v6disk.ErrIOFailed.WithMessage(
			fmt.Sprintf(
				"sector %d not in [0, %d)", sector, device.totalSectors,
			),
		)
	}

	device.mu.Lock()
	defer device.mu.Unlock()

	_, err := device.stream.Seek(int64(sector)*SectorSize, io.SeekStart)
	if err != nil {
		return v6disk.ErrIOFailed.Wrap(err)
	}

	nRead, err := io.ReadFull(device.stream, buffer)
	if err != nil {
		return v6disk.ErrIOFailed.WithMessage(
			fmt.Sprintf(
				"read of sector %d failed: expected %dB, got %dB",
				sector,
				SectorSize,
				nRead,
			),
		)
	}
	return nil
}
