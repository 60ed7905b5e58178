package v6disk

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// DriverError is the error type returned by every operation in this module.
// Each error is anchored to one of the sentinel values below so that callers
// can discriminate failure kinds with [errors.Is] while still getting a
// message naming the inode, block, or path component at fault.
type DriverError interface {
	error
	WithMessage(message string) DriverError
	Wrap(err error) DriverError
}

type baseDriverError string

const rootError = baseDriverError("")

var ErrArgumentOutOfRange = rootError.WithMessage("Numerical argument out of domain")
var ErrFileSystemCorrupted = rootError.WithMessage("Structure needs cleaning")
var ErrFileTooLarge = rootError.WithMessage("File too large")
var ErrInvalidArgument = rootError.WithMessage("Invalid argument")
var ErrInvalidFileSystem = rootError.WithMessage("Wrong medium type")
var ErrIOFailed = rootError.WithMessage("Input/output error")
var ErrIsADirectory = rootError.WithMessage("Is a directory")
var ErrNameTooLong = rootError.WithMessage("File name too long")
var ErrNoData = rootError.WithMessage("No data available")
var ErrNotADirectory = rootError.WithMessage("Not a directory")
var ErrNotFound = rootError.WithMessage("No such file or directory")
var ErrNotMounted = rootError.WithMessage("No such device")
var ErrNotSupported = rootError.WithMessage("Operation not supported")
var ErrReadOnlyFileSystem = rootError.WithMessage("Read-only file system")
var ErrResultOutOfRange = rootError.WithMessage("Numerical result out of range")

func (e baseDriverError) Error() string {
	return string(e)
}

func (e baseDriverError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       message,
		originalError: e,
	}
}

func (e baseDriverError) Wrap(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

// -----------------------------------------------------------------------------

type customDriverError struct {
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a
// string describing the error.
func (e customDriverError) Error() string {
	return e.message
}

func (e customDriverError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customDriverError) Wrap(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e customDriverError) Unwrap() error {
	return e.originalError
}
