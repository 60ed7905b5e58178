package diskimg_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/dargueta/v6disk"
	c "github.com/dargueta/v6disk/file_systems/common"
	"github.com/dargueta/v6disk/file_systems/common/diskimg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

func randomImage(t *testing.T, totalSectors uint) []byte {
	image := make([]byte, totalSectors*diskimg.SectorSize)
	_, err := rand.Read(image)
	require.NoError(t, err, "failed to generate a random image")
	return image
}

func TestReadSector__Basic(t *testing.T) {
	image := randomImage(t, 16)
	device, err := diskimg.NewFromBytes(image)
	require.NoError(t, err)
	assert.EqualValues(t, 16, device.TotalSectors())

	buffer := make([]byte, diskimg.SectorSize)
	for sector := c.PhysicalBlock(0); sector < 16; sector++ {
		err := device.ReadSector(sector, buffer)
		require.NoErrorf(t, err, "failed to read sector %d of [0, 16)", sector)

		start := int(sector) * diskimg.SectorSize
		assert.Truef(
			t,
			bytes.Equal(buffer, image[start:start+diskimg.SectorSize]),
			"sector %d read back the wrong data",
			sector,
		)
	}
}

func TestReadSector__PastEnd(t *testing.T) {
	device, err := diskimg.NewFromBytes(randomImage(t, 16))
	require.NoError(t, err)

	buffer := make([]byte, diskimg.SectorSize)
	err = device.ReadSector(16, buffer)
	assert.ErrorIs(t, err, v6disk.ErrIOFailed)
}

func TestReadSector__WrongBufferSize(t *testing.T) {
	device, err := diskimg.NewFromBytes(randomImage(t, 4))
	require.NoError(t, err)

	err = device.ReadSector(0, make([]byte, diskimg.SectorSize-1))
	assert.ErrorIs(t, err, v6disk.ErrInvalidArgument)

	err = device.ReadSector(0, make([]byte, diskimg.SectorSize+1))
	assert.ErrorIs(t, err, v6disk.ErrInvalidArgument)
}

// An image whose length isn't sector-aligned can't be trusted at all.
func TestNewFromBytes__UnalignedImage(t *testing.T) {
	_, err := diskimg.NewFromBytes(make([]byte, 3*diskimg.SectorSize+17))
	assert.ErrorIs(t, err, v6disk.ErrInvalidFileSystem)
}

// New with an explicit sector count only exposes that many sectors, even if
// the stream is longer.
func TestNew__ExplicitSize(t *testing.T) {
	image := randomImage(t, 8)
	device := diskimg.New(bytesextra.NewReadWriteSeeker(image), 4)
	require.EqualValues(t, 4, device.TotalSectors())

	buffer := make([]byte, diskimg.SectorSize)
	assert.NoError(t, device.ReadSector(3, buffer))
	assert.ErrorIs(t, device.ReadSector(4, buffer), v6disk.ErrIOFailed)
}
