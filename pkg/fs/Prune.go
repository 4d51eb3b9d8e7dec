// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

type PruneInput struct {
	SourceFileSystem      FileSystem
	SourceName            string // "/" for a directory root
	DestinationFileSystem FileSystem
	DestinationName       string // "/" for a directory root
	Filter                Filter
	DryRun                bool
	Debug                 bool
	Logger                Logger
	Report                *Report
}

// Prune deletes every destination file that is neither excluded, protected,
// nor backed by a source file.  A destination file is not backed by a source directory.
// Deletion is irreversible.
// An error is only returned if the destination root cannot be enumerated.
func Prune(ctx context.Context, input *PruneInput) error {
	root := &mirrorRoot{
		filter:          input.Filter,
		source:          input.SourceFileSystem,
		sourceName:      input.SourceName,
		destination:     input.DestinationFileSystem,
		destinationName: input.DestinationName,
	}
	if root.filter == nil {
		root.filter = noFilter{}
	}
	report := input.Report

	return Enumerate(ctx, root.destination, root.destinationName, func(destination *Record, err error) error {
		if err != nil {
			report.AddError(err)
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if !within(root.destinationName, destination.Name()) {
			report.AddError(NewFileError(DeleteFailure, destination.Path(), errors.New("path is outside of the destination root")))
			return nil
		}

		sourceName := root.sourceFor(destination.Name())
		rulePath := root.rulePath(sourceName)

		rule, excluded := root.filter.Excluded(rulePath)
		if !excluded {
			rule, excluded = root.filter.Protected(rulePath)
		}
		if excluded {
			report.Skipped = append(report.Skipped, destination.Path())
			if input.Debug {
				log(input.Logger, "KEEP", map[string]interface{}{
					"dst":  destination.Path(),
					"rule": rule,
				})
			}
			return nil
		}

		if sourceFileInfo, err := root.source.Stat(ctx, sourceName); err == nil {
			if !sourceFileInfo.IsDir() {
				return nil
			}
			// a source directory replaces the destination file
		} else if !root.source.IsNotExist(err) {
			report.AddError(NewFileError(ReadFailure, root.sourcePath(sourceName), err))
			return nil
		}

		log(input.Logger, "DELETE", map[string]interface{}{
			"dst": destination.Path(),
		})

		if !input.DryRun {
			if err := root.destination.Remove(ctx, destination.Name()); err != nil {
				report.AddError(NewFileError(DeleteFailure, destination.Path(), fmt.Errorf("error removing file: %w", err)))
				return nil
			}
		}

		report.Deleted = append(report.Deleted, destination.Path())
		return nil
	})
}

// removeEmptyDirectories removes the directory name and the directories below it, deepest first.
// It fails without removing name if any other entry remains.
func removeEmptyDirectories(ctx context.Context, fileSystem FileSystem, name string) error {
	entries, err := fileSystem.ReadDir(ctx, name)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		child := fileSystem.Join(name, entry.Name())
		if !entry.IsDir() {
			return fmt.Errorf("directory is not empty: %q remains", child)
		}
		if err := removeEmptyDirectories(ctx, fileSystem, child); err != nil {
			return err
		}
	}
	return fileSystem.Remove(ctx, name)
}

// within returns true if name is root or below root.
func within(root string, name string) bool {
	if name != path.Clean(name) {
		return false
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return false
		}
	}
	if root == "/" || name == root {
		return true
	}
	return strings.HasPrefix(name, root+"/")
}
