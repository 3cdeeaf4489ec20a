// Package ftpserver implements the per-session FTP protocol engine: command
// parsing, the active/passive data-channel state machine, the file-transfer
// loops, directory listings and the login gate.
package ftpserver

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the filesystem collaborator and recognised by
// the handlers when deciding which reply code to send.
var (
	// ErrNotExist is returned by Stat/OpenFile/OpenDir when the path is missing.
	ErrNotExist = errors.New("no such file or directory")
	// ErrAlreadyExists is returned by Mkdir when the directory is already taken.
	ErrAlreadyExists = errors.New("file or directory already exists")
	// ErrPathTooLong is returned by the Path Resolver when a resolved path would
	// not fit in the path buffer.
	ErrPathTooLong = errors.New("path too long")
	// ErrParamTooLong describes a parameter string that would not fit in the
	// parameter buffer. The Command Reader reports that case through its
	// readTooLong outcome, not through this error.
	ErrParamTooLong = errors.New("parameter too long")
	// ErrSyntax is wrapped by getDateTime when a timestamp is not 14 digits.
	// The Command Reader reports a missing line terminator through its
	// readSyntaxError outcome, not through this error.
	ErrSyntax = errors.New("syntax error, command line malformed")
)

// DriverError wraps an error returned by the filesystem collaborator.
type DriverError struct {
	str string
	err error
}

func newDriverError(str string, err error) *DriverError {
	return &DriverError{str: str, err: err}
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("driver error: %s: %v", e.str, e.err)
}

// Unwrap exposes the underlying cause so errors.Is/errors.As keep working.
func (e *DriverError) Unwrap() error {
	return e.err
}

// NetworkError wraps an error originating from the control or data stream.
type NetworkError struct {
	str string
	err error
}

func newNetworkError(str string, err error) *NetworkError {
	return &NetworkError{str: str, err: err}
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.str, e.err)
}

// Unwrap exposes the underlying cause so errors.Is/errors.As keep working.
func (e *NetworkError) Unwrap() error {
	return e.err
}

// FileAccessError wraps an error returned while reading or writing a file
// during a transfer.
type FileAccessError struct {
	str string
	err error
}

func newFileAccessError(str string, err error) *FileAccessError {
	return &FileAccessError{str: str, err: err}
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("file access error: %s: %v", e.str, e.err)
}

// Unwrap exposes the underlying cause so errors.Is/errors.As keep working.
func (e *FileAccessError) Unwrap() error {
	return e.err
}

// NewDriverError wraps an error returned by a FileSystem implementation so
// getErrorCode can classify it by type instead of by message text. Exported
// for filesystem collaborators living outside this package (internal/fsdriver).
func NewDriverError(str string, err error) error {
	if err == nil {
		return nil
	}

	return newDriverError(str, err)
}

// NewFileAccessError wraps an error hit mid-transfer while reading or
// writing the local file, as opposed to a failure on the data socket itself
// (see NetworkError). Exported for filesystem collaborators living outside
// this package.
func NewFileAccessError(str string, err error) error {
	if err == nil {
		return nil
	}

	return newFileAccessError(str, err)
}

// getErrorCode classifies an error into the FTP reply code and text it
// should produce, switching on the sentinel or wrapper type that produced
// it rather than matching on message text.
func getErrorCode(err error) (code int, text string) {
	switch {
	case errors.Is(err, ErrNotExist):
		return 550, "No such file or directory"
	case errors.Is(err, ErrAlreadyExists):
		return 550, "File or directory already exists"
	}

	var driverErr *DriverError
	if errors.As(err, &driverErr) {
		return 450, "Requested file action not taken"
	}

	var fileErr *FileAccessError
	if errors.As(err, &fileErr) {
		return 451, "Communication error during transfer"
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return 426, "Error during file transfer"
	}

	return 550, "Requested action not taken"
}
