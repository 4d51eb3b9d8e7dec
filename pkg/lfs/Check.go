// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package lfs

import (
	"errors"
	"fmt"
)

var (
	ErrSameRoot   = errors.New("source and destination must be different")
	ErrNestedRoot = errors.New("source and destination must not be nested")
)

// Check returns an error if the source and destination roots are the same or one contains the other.
// Mirroring a root into itself would copy the destination into itself or prune the source.
func Check(source string, destination string) error {
	sourceDirectories := Split(source)
	destinationDirectories := Split(destination)
	i := 0
	for ; i < len(sourceDirectories) && i < len(destinationDirectories); i++ {
		if sourceDirectories[i] != destinationDirectories[i] {
			return nil
		}
	}
	switch {
	case i == len(sourceDirectories) && i == len(destinationDirectories):
		return fmt.Errorf("%w: %q", ErrSameRoot, "file://"+source)
	case i == len(destinationDirectories):
		return fmt.Errorf("%w: destination %q is a parent of source %q", ErrNestedRoot, destination, source)
	default:
		return fmt.Errorf("%w: source %q is a parent of destination %q", ErrNestedRoot, source, destination)
	}
}
