// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"context"
	"fmt"
	"os"
)

// EnumerateFunc is called for every regular file.
// If err is not nil, then record is nil and err describes a file or directory that could not be read.
// Returning a non-nil error stops the enumeration.
type EnumerateFunc func(record *Record, err error) error

// Enumerate calls fn for every regular file reachable from root by recursive descent.
// Directories are not yielded.  Symbolic links are followed, without cycle detection.
// A root that does not exist yields nothing.
func Enumerate(ctx context.Context, fileSystem FileSystem, root string, fn EnumerateFunc) error {
	fileInfo, err := fileSystem.Stat(ctx, root)
	if err != nil {
		if fileSystem.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error stating root %q: %w", root, err)
	}

	if !fileInfo.IsDir() {
		if !fileInfo.Mode().IsRegular() {
			return nil
		}
		return fn(NewRecord(root, fileSystem.Join(fileSystem.Root(), root), fileInfo), nil)
	}

	entries, err := fileSystem.ReadDir(ctx, root)
	if err != nil {
		return fmt.Errorf("error reading root directory %q: %w", root, err)
	}

	return enumerateEntries(ctx, fileSystem, root, entries, fn)
}

func enumerateEntries(ctx context.Context, fileSystem FileSystem, directory string, entries []FileInfo, fn EnumerateFunc) error {
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := fileSystem.Join(directory, entry.Name())

		fileInfo := entry
		if entry.Mode()&os.ModeSymlink != 0 {
			target, err := fileSystem.Stat(ctx, name)
			if err != nil {
				if fileSystem.IsNotExist(err) {
					continue // dangling link
				}
				if err := fn(nil, NewFileError(EnumerateFailure, name, err)); err != nil {
					return err
				}
				continue
			}
			fileInfo = target
		}

		if fileInfo.IsDir() {
			children, err := fileSystem.ReadDir(ctx, name)
			if err != nil {
				if err := fn(nil, NewFileError(EnumerateFailure, name, err)); err != nil {
					return err
				}
				continue
			}
			if err := enumerateEntries(ctx, fileSystem, name, children, fn); err != nil {
				return err
			}
			continue
		}

		if !fileInfo.Mode().IsRegular() {
			continue
		}

		if err := fn(NewRecord(name, fileSystem.Join(fileSystem.Root(), name), fileInfo), nil); err != nil {
			return err
		}
	}
	return nil
}
