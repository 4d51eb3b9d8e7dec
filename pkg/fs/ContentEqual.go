// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
)

const contentChunkSize = 64 * 1024

// ContentEqual reads both files fully and returns true if their bytes are identical.
// Any failure is returned as a *FileError of kind ReadFailure.
func ContentEqual(ctx context.Context, aFileSystem FileSystem, aName string, bFileSystem FileSystem, bName string) (bool, error) {
	a, err := aFileSystem.Open(ctx, aName)
	if err != nil {
		return false, NewFileError(ReadFailure, aFileSystem.Join(aFileSystem.Root(), aName), err)
	}
	defer func() { _ = a.Close() }() // silently close

	b, err := bFileSystem.Open(ctx, bName)
	if err != nil {
		return false, NewFileError(ReadFailure, bFileSystem.Join(bFileSystem.Root(), bName), err)
	}
	defer func() { _ = b.Close() }() // silently close

	aBuffer := make([]byte, contentChunkSize)
	bBuffer := make([]byte, contentChunkSize)
	for {
		aCount, aErr := io.ReadFull(a, aBuffer)
		if aErr != nil && !isEnd(aErr) {
			return false, NewFileError(ReadFailure, a.Name(), aErr)
		}
		bCount, bErr := io.ReadFull(b, bBuffer)
		if bErr != nil && !isEnd(bErr) {
			return false, NewFileError(ReadFailure, b.Name(), bErr)
		}
		if aCount != bCount || !bytes.Equal(aBuffer[:aCount], bBuffer[:bCount]) {
			return false, nil
		}
		if aErr != nil || bErr != nil {
			return aErr != nil && bErr != nil, nil
		}
	}
}

func isEnd(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
