// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

import (
	"fmt"
)

// ErrorKind classifies a per-file failure.
type ErrorKind int

const (
	// RootMissing means a configured source root does not exist.  It is never fatal.
	RootMissing ErrorKind = iota + 1
	// ReadFailure means a source or destination file could not be read.
	ReadFailure
	// WriteFailure means a destination directory or file could not be created, made writable, or written.
	WriteFailure
	// DeleteFailure means a destination file could not be removed.
	DeleteFailure
	// EnumerateFailure means a tree could not be listed.
	EnumerateFailure
)

func (k ErrorKind) String() string {
	switch k {
	case RootMissing:
		return "RootMissing"
	case ReadFailure:
		return "ReadFailure"
	case WriteFailure:
		return "WriteFailure"
	case DeleteFailure:
		return "DeleteFailure"
	case EnumerateFailure:
		return "EnumerateFailure"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// FileError is an error for a single file.  The run continues after a FileError.
type FileError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Kind, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func NewFileError(kind ErrorKind, path string, err error) *FileError {
	return &FileError{
		Kind: kind,
		Path: path,
		Err:  err,
	}
}
