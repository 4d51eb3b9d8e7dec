// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"context"
	"time"
)

// Change is the classification of a source file against its destination counterpart.
type Change int

const (
	// ChangeNone means the destination is up to date.
	ChangeNone Change = iota
	// ChangeNew means the destination does not exist.
	ChangeNew
	// ChangeModified means the destination content differs.
	ChangeModified
	// ChangeTimestamp means the content is identical, but the timestamps differ.
	ChangeTimestamp
)

func (c Change) String() string {
	switch c {
	case ChangeNone:
		return "none"
	case ChangeNew:
		return "new"
	case ChangeModified:
		return "modified"
	case ChangeTimestamp:
		return "timestamp"
	}
	return "unknown"
}

// Copy returns true if the content of the destination has to be written.
func (c Change) Copy() bool {
	return c == ChangeNew || c == ChangeModified
}

type NeedsCopyInput struct {
	Source                *Record
	SourceFileSystem      FileSystem
	Destination           *Record // nil if the destination does not exist
	DestinationFileSystem FileSystem
	TimestampPrecision    time.Duration
}

// NeedsCopy classifies the source against the destination, cheapest check first.
// The timestamp comparison is only a shortcut; the content comparison is authoritative.
func NeedsCopy(ctx context.Context, input *NeedsCopyInput) (Change, error) {
	if input.Destination == nil {
		return ChangeNew, nil
	}

	if EqualTimestamp(input.Source.ModTime(), input.Destination.ModTime(), input.TimestampPrecision) {
		return ChangeNone, nil
	}

	if input.Source.Size() != input.Destination.Size() {
		return ChangeModified, nil
	}

	equal, err := ContentEqual(
		ctx,
		input.SourceFileSystem,
		input.Source.Name(),
		input.DestinationFileSystem,
		input.Destination.Name())
	if err != nil {
		return ChangeNone, err
	}
	if !equal {
		return ChangeModified, nil
	}

	return ChangeTimestamp, nil
}
