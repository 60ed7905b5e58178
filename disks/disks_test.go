package disks_test

import (
	"testing"

	"github.com/dargueta/v6disk/disks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPredefinedDiskGeometry__RK05(t *testing.T) {
	geometry, err := disks.GetPredefinedDiskGeometry("rk05")
	require.NoError(t, err)

	assert.Equal(t, "DEC RK05", geometry.Name)
	// 12 sectors * 203 tracks * 2 surfaces
	assert.EqualValues(t, 4872, geometry.TotalSectors())
	assert.EqualValues(t, 4872*512, geometry.TotalSizeBytes())
}

func TestGetPredefinedDiskGeometry__UnknownSlug(t *testing.T) {
	_, err := disks.GetPredefinedDiskGeometry("zip100")
	assert.Error(t, err)
}

func TestPredefinedDiskGeometrySlugs(t *testing.T) {
	slugs := disks.PredefinedDiskGeometrySlugs()
	assert.Contains(t, slugs, "rk05")
	assert.Contains(t, slugs, "rp03")
	assert.IsNonDecreasing(t, slugs)
}
