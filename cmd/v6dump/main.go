// Command v6dump reads files out of Unix V6 disk images.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dargueta/v6disk"
	"github.com/dargueta/v6disk/disks"
	"github.com/dargueta/v6disk/file_systems/common/diskimg"
	"github.com/dargueta/v6disk/file_systems/unixv6"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "v6dump",
		Usage: "Read files out of Unix V6 disk images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name: "geometry",
				Usage: "Require the image to be an exact dump of the given" +
					" drive model, e.g. 'rk05'",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List a directory",
				Action:    listDirectory,
				ArgsUsage: "IMAGE  PATH",
			},
			{
				Name:      "cat",
				Usage:     "Write a file's contents to stdout",
				Action:    catFile,
				ArgsUsage: "IMAGE  PATH",
			},
			{
				Name:      "stat",
				Usage:     "Show details of a single file or directory",
				Action:    statFile,
				ArgsUsage: "IMAGE  PATH",
			},
			{
				Name:   "geometries",
				Usage:  "List the drive models usable with --geometry",
				Action: listGeometries,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

// mountImage opens an image file and mounts it. The caller must close the
// returned file handle.
func mountImage(context *cli.Context) (*unixv6.FileSystem, *os.File, error) {
	if context.Args().Len() != 2 {
		return nil, nil, fmt.Errorf(
			"expected exactly two arguments: IMAGE and PATH")
	}
	imagePath := context.Args().Get(0)

	file, err := os.Open(imagePath)
	if err != nil {
		return nil, nil, err
	}

	if slug := context.String("geometry"); slug != "" {
		err = checkGeometry(file, slug)
		if err != nil {
			file.Close()
			return nil, nil, err
		}
	}

	device, err := diskimg.NewWithInferredSize(file)
	if err != nil {
		file.Close()
		return nil, nil, err
	}

	fs := unixv6.NewFileSystem(device)
	err = fs.Mount()
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return fs, file, nil
}

// checkGeometry verifies the image is exactly the size of the named drive.
func checkGeometry(file *os.File, slug string) error {
	geometry, err := disks.GetPredefinedDiskGeometry(slug)
	if err != nil {
		return err
	}

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() != geometry.TotalSizeBytes() {
		return fmt.Errorf(
			"image is %dB but a %s dump is exactly %dB",
			info.Size(),
			geometry.Name,
			geometry.TotalSizeBytes(),
		)
	}
	return nil
}

func listDirectory(context *cli.Context) error {
	fs, file, err := mountImage(context)
	if err != nil {
		return err
	}
	defer file.Close()

	entries, err := fs.ReadDir(context.Args().Get(1))
	if err != nil {
		return err
	}

	for _, entry := range entries {
		stat := entry.Stat()
		fmt.Fprintf(
			context.App.Writer,
			"%5d  %-6s %8d  %s\n",
			stat.InodeNumber,
			modeString(stat.ModeFlags),
			stat.Size,
			entry.Name(),
		)
	}
	return nil
}

func catFile(context *cli.Context) error {
	fs, file, err := mountImage(context)
	if err != nil {
		return err
	}
	defer file.Close()

	contents, err := fs.ReadFile(context.Args().Get(1))
	if err != nil {
		return err
	}

	_, err = context.App.Writer.Write(contents)
	return err
}

func statFile(context *cli.Context) error {
	fs, file, err := mountImage(context)
	if err != nil {
		return err
	}
	defer file.Close()

	stat, err := fs.Stat(context.Args().Get(1))
	if err != nil {
		return err
	}

	fmt.Fprintf(context.App.Writer, "inode:    %d\n", stat.InodeNumber)
	fmt.Fprintf(context.App.Writer, "mode:     %s (%06o)\n", modeString(stat.ModeFlags), stat.ModeFlags)
	fmt.Fprintf(context.App.Writer, "links:    %d\n", stat.Nlinks)
	fmt.Fprintf(context.App.Writer, "uid:      %d\n", stat.Uid)
	fmt.Fprintf(context.App.Writer, "gid:      %d\n", stat.Gid)
	fmt.Fprintf(context.App.Writer, "size:     %d\n", stat.Size)
	fmt.Fprintf(context.App.Writer, "blocks:   %d\n", stat.NumBlocks)
	fmt.Fprintf(context.App.Writer, "accessed: %s\n", stat.LastAccessed)
	fmt.Fprintf(context.App.Writer, "modified: %s\n", stat.LastModified)
	return nil
}

// modeString renders mode flags the way ls -l does.
func modeString(flags uint32) string {
	runes := []byte("----------")

	switch flags & v6disk.S_IFMT {
	case v6disk.S_IFDIR:
		runes[0] = 'd'
	case v6disk.S_IFCHR:
		runes[0] = 'c'
	case v6disk.S_IFBLK:
		runes[0] = 'b'
	}

	bits := "rwxrwxrwx"
	for i := 0; i < 9; i++ {
		if flags&(1<<(8-i)) != 0 {
			runes[i+1] = bits[i]
		}
	}
	return string(runes)
}

func listGeometries(context *cli.Context) error {
	for _, slug := range disks.PredefinedDiskGeometrySlugs() {
		geometry, err := disks.GetPredefinedDiskGeometry(slug)
		if err != nil {
			return err
		}
		fmt.Fprintf(
			context.App.Writer,
			"%-6s %-10s %8d sectors (%d bytes)\n",
			slug,
			geometry.Name,
			geometry.TotalSectors(),
			geometry.TotalSizeBytes(),
		)
	}
	return nil
}
