package drive

import (
	"errors"
)

var (
	// ErrNotFound matches errors for entries that do not exist (ENOENT).
	ErrNotFound = errors.New("no such file or directory")

	// ErrExists matches errors for entries that already exist (EEXIST).
	ErrExists = errors.New("file already exists")

	// ErrBadDescriptor matches errors for unknown or closed file descriptors (EBADF).
	ErrBadDescriptor = errors.New("bad file descriptor")

	// ErrNotDirectory matches errors for path components that are not directories (ENOTDIR).
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotEmpty matches errors for removing a directory that still has entries (ENOTEMPTY).
	ErrNotEmpty = errors.New("directory not empty")

	// ErrNotWritable matches errors for mutations on a read-only drive or checkout (EPERM).
	ErrNotWritable = errors.New("drive is not writable")

	// ErrClosed is returned for operations on a closed drive.
	ErrClosed = errors.New("drive is closed")

	// ErrUnknownVersion is returned when checking out a version the drive never had.
	ErrUnknownVersion = errors.New("unknown drive version")

	// ErrDownloadCancelled completes a download that was cancelled through its handle.
	ErrDownloadCancelled = errors.New("download cancelled")

	// ErrInvalidAttributes is returned when metadata attributes are not valid JSON.
	ErrInvalidAttributes = errors.New("metadata attributes are not valid json")
)

var codeToSentinel = map[string]error{
	"ENOENT":    ErrNotFound,
	"EEXIST":    ErrExists,
	"EBADF":     ErrBadDescriptor,
	"ENOTDIR":   ErrNotDirectory,
	"ENOTEMPTY": ErrNotEmpty,
	"EPERM":     ErrNotWritable,
}

// PathError is the error a drive reports for a failed file system operation.
// Code carries the POSIX-style code (e.g. ENOENT); errors.Is matches the sentinel for it.
type PathError struct {
	Code string
	Op   string
	Path string
}

// NewPathError builds a PathError.
func NewPathError(code, op, path string) *PathError {
	return &PathError{Code: code, Op: op, Path: path}
}

func (e *PathError) Error() string {
	return e.Code + ": " + e.Op + " " + e.Path
}

// Is reports whether target is the sentinel error for e.Code.
func (e *PathError) Is(target error) bool {
	sentinel, ok := codeToSentinel[e.Code]
	return ok && sentinel == target
}
