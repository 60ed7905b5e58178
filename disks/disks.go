// Package disks is a registry of the disk drives Unix V6 shipped on, used to
// sanity-check that an image file is plausibly a dump of a real volume.
package disks

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/gocarina/gocsv"
)

// SectorSize is fixed across every drive in the registry; all of these
// devices present 512-byte sectors to the operating system.
const SectorSize = 512

// DiskGeometry describes the physical layout of one drive model.
type DiskGeometry struct {
	Name               string `csv:"name"`
	Slug               string `csv:"slug"`
	FirstYearAvailable uint   `csv:"first_year_available"`
	IsRemovable        uint   `csv:"is_removable"`
	SectorsPerTrack    uint   `csv:"sectors_per_track"`
	TracksPerSurface   uint   `csv:"tracks_per_surface"`
	Surfaces           uint   `csv:"surfaces"`
	Notes              string `csv:"notes"`
}

// TotalSectors gives the number of addressable sectors on the drive.
func (g *DiskGeometry) TotalSectors() uint {
	return g.SectorsPerTrack * g.TracksPerSurface * g.Surfaces
}

// TotalSizeBytes gives the capacity of the drive. This is the exact size an
// image file dumped from one should be.
func (g *DiskGeometry) TotalSizeBytes() int64 {
	return int64(g.TotalSectors()) * SectorSize
}

// https://gunkies.org/wiki/Category:DEC_Disk_Drives
//
//go:embed disk-geometries.csv
var diskGeometriesRawCSV string
var diskGeometries map[string]DiskGeometry

// GetPredefinedDiskGeometry returns the geometry registered under the given
// slug, e.g. "rk05".
func GetPredefinedDiskGeometry(slug string) (DiskGeometry, error) {
	geometry, ok := diskGeometries[slug]
	if ok {
		return geometry, nil
	}

	err := fmt.Errorf("no predefined disk geometry exists with slug %q", slug)
	return DiskGeometry{}, err
}

// PredefinedDiskGeometrySlugs lists every registered slug in sorted order.
func PredefinedDiskGeometrySlugs() []string {
	slugs := make([]string, 0, len(diskGeometries))
	for slug := range diskGeometries {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

func init() {
	var rows []DiskGeometry
	err := gocsv.UnmarshalString(diskGeometriesRawCSV, &rows)
	if err != nil {
		panic(fmt.Errorf("failed to decode disk geometry CSV: %w", err))
	}

	diskGeometries = make(map[string]DiskGeometry, len(rows))

	for i, row := range rows {
		_, exists := diskGeometries[row.Slug]
		if exists {
			panic(fmt.Errorf(
				"duplicate definition for disk %q found on row %d", row.Slug, i+1))
		}
		diskGeometries[row.Slug] = row
	}
}
