package v6disk_test

import (
	"errors"
	"testing"

	"github.com/dargueta/v6disk"
	"github.com/stretchr/testify/assert"
)

func TestDriverErrorWithMessage(t *testing.T) {
	newErr := v6disk.ErrNotADirectory.WithMessage("inode 17")
	assert.Equal(
		t, "Not a directory: inode 17", newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, v6disk.ErrNotADirectory)
}

func TestDriverErrorWrap(t *testing.T) {
	originalErr := errors.New("original error")
	newErr := v6disk.ErrIOFailed.Wrap(originalErr)
	expectedMessage := "Input/output error: original error"

	assert.EqualValues(t, expectedMessage, newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, originalErr, "original error not set as parent")
	assert.ErrorIs(t, newErr, v6disk.ErrIOFailed, "sentinel not set as parent")
}

// Wrapping must not collapse the sentinel chain; a wrapped corruption error is
// still distinguishable from an I/O failure.
func TestDriverErrorSentinelsAreDistinct(t *testing.T) {
	err := v6disk.ErrFileSystemCorrupted.WithMessage("directory inode 3 size 37")
	assert.ErrorIs(t, err, v6disk.ErrFileSystemCorrupted)
	assert.NotErrorIs(t, err, v6disk.ErrIOFailed)
	assert.NotErrorIs(t, err, v6disk.ErrNotFound)
}
