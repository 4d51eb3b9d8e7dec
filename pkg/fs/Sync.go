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
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dustin/go-humanize"
)

// Sync mirrors every root pair in order: first the copy pass, then the prune pass,
// then the files that were blocked by a file/directory conflict.
// Errors for single files are collected in the report and never stop the run.
// Cancellation is checked between files.
func Sync(ctx context.Context, input *SyncInput) *Report {
	report := NewReport()

	for _, pair := range input.Roots {
		if err := ctx.Err(); err != nil {
			report.AddError(err)
			break
		}

		log(input.Logger, "Synchronizing", map[string]interface{}{
			"src":     pair.Source,
			"dst":     pair.Destination,
			"dry_run": input.DryRun,
		})

		root, err := openRoot(ctx, pair, input.Filter, input.NewFileSystem)
		if err != nil {
			report.AddError(NewFileError(EnumerateFailure, pair.Source, err))
			continue
		}

		var conflicts []*Record
		if root.sourceExists {
			conflicts, err = copyPass(ctx, input, root, report)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					report.AddError(err)
					break
				}
				report.AddError(NewFileError(EnumerateFailure, pair.Source, err))
			}
		} else {
			report.Missing = append(report.Missing, pair.Source)
			log(input.Logger, "Source does not exist", map[string]interface{}{
				"src":  pair.Source,
				"kind": RootMissing.String(),
			})
		}

		err = Prune(ctx, &PruneInput{
			SourceFileSystem:      root.source,
			SourceName:            root.sourceName,
			DestinationFileSystem: root.destination,
			DestinationName:       root.destinationName,
			Filter:                root.filter,
			DryRun:                input.DryRun,
			Debug:                 input.Debug,
			Logger:                input.Logger,
			Report:                report,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				report.AddError(err)
				break
			}
			report.AddError(NewFileError(EnumerateFailure, pair.Destination, fmt.Errorf("prune aborted: %w", err)))
		}

		if err := resolveConflicts(ctx, input, root, report, conflicts); err != nil {
			report.AddError(err)
			break
		}
	}

	return report
}

// copyPass copies every new or modified source file.
// Files whose destination is blocked by a directory, or by a file where a parent directory belongs,
// are returned so they can be retried once the prune pass has removed the blockers.
func copyPass(ctx context.Context, input *SyncInput, root *mirrorRoot, report *Report) ([]*Record, error) {
	conflicts := []*Record{}
	err := Enumerate(ctx, root.source, root.sourceName, func(source *Record, err error) error {
		if err != nil {
			report.AddError(err)
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if rule, ok := root.filter.Excluded(root.rulePath(source.Name())); ok {
			report.Skipped = append(report.Skipped, source.Path())
			if input.Debug {
				log(input.Logger, "SKIP", map[string]interface{}{
					"src":  source.Path(),
					"rule": rule,
				})
			}
			return nil
		}

		destinationName := root.destinationFor(source.Name())
		destinationPath := root.destinationPath(destinationName)

		destinationFileInfo, err := root.destination.Stat(ctx, destinationName)
		switch {
		case err == nil && destinationFileInfo.IsDir():
			conflicts = append(conflicts, source)
		case err == nil:
			mirrorFile(ctx, input, root, report, source, NewRecord(destinationName, destinationPath, destinationFileInfo))
		case !root.destination.IsNotExist(err):
			report.AddError(NewFileError(ReadFailure, destinationPath, err))
		default:
			blocker, err := root.parentBlocker(ctx, destinationName, nil)
			if err != nil {
				report.AddError(NewFileError(ReadFailure, destinationPath, err))
				return nil
			}
			if len(blocker) > 0 {
				conflicts = append(conflicts, source)
				return nil
			}
			mirrorFile(ctx, input, root, report, source, nil)
		}

		return nil
	})
	return conflicts, err
}

// resolveConflicts retries the files deferred by the copy pass.
// During a dry run, the files listed as deleted are treated as already removed.
// Only cancellation is returned as an error.
func resolveConflicts(ctx context.Context, input *SyncInput, root *mirrorRoot, report *Report, conflicts []*Record) error {
	if len(conflicts) == 0 {
		return nil
	}

	deleted := mapset.NewThreadUnsafeSet[string](report.Deleted...)

	for _, source := range conflicts {
		if err := ctx.Err(); err != nil {
			return err
		}

		destinationName := root.destinationFor(source.Name())
		destinationPath := root.destinationPath(destinationName)

		destinationFileInfo, err := root.destination.Stat(ctx, destinationName)
		switch {
		case err == nil && destinationFileInfo.IsDir():
			remaining, err := root.remaining(ctx, destinationName, deleted)
			if err != nil {
				report.AddError(NewFileError(ReadFailure, destinationPath, err))
				continue
			}
			if len(remaining) > 0 {
				report.AddError(NewFileError(WriteFailure, destinationPath, fmt.Errorf("destination is a directory containing %q", remaining)))
				continue
			}
			log(input.Logger, "RMDIR", map[string]interface{}{
				"dst": destinationPath,
			})
			if !input.DryRun {
				if err := removeEmptyDirectories(ctx, root.destination, destinationName); err != nil {
					report.AddError(NewFileError(DeleteFailure, destinationPath, fmt.Errorf("error removing directory: %w", err)))
					continue
				}
			}
			mirrorFile(ctx, input, root, report, source, nil)
		case err == nil:
			mirrorFile(ctx, input, root, report, source, NewRecord(destinationName, destinationPath, destinationFileInfo))
		case !root.destination.IsNotExist(err):
			report.AddError(NewFileError(ReadFailure, destinationPath, err))
		default:
			blocker, err := root.parentBlocker(ctx, destinationName, deleted)
			if err != nil {
				report.AddError(NewFileError(ReadFailure, destinationPath, err))
				continue
			}
			if len(blocker) > 0 {
				report.AddError(NewFileError(WriteFailure, destinationPath, fmt.Errorf("parent %q is a file", root.destinationPath(blocker))))
				continue
			}
			mirrorFile(ctx, input, root, report, source, nil)
		}
	}

	return nil
}

// mirrorFile copies or touches a single file.
// destination is nil if the destination file does not exist.
func mirrorFile(ctx context.Context, input *SyncInput, root *mirrorRoot, report *Report, source *Record, destination *Record) {
	destinationName := root.destinationFor(source.Name())
	destinationPath := root.destinationPath(destinationName)

	change, err := NeedsCopy(ctx, &NeedsCopyInput{
		Source:                source,
		SourceFileSystem:      root.source,
		Destination:           destination,
		DestinationFileSystem: root.destination,
		TimestampPrecision:    input.TimestampPrecision,
	})
	if err != nil {
		report.AddError(err)
		return
	}

	switch {
	case change.Copy():
		log(input.Logger, "COPY", map[string]interface{}{
			"src":    source.Path(),
			"dst":    destinationPath,
			"change": change.String(),
			"size":   humanize.Bytes(uint64(source.Size())),
		})
		if input.DryRun {
			report.Copied = append(report.Copied, destinationPath)
			return
		}
		output, err := Copy(ctx, &CopyInput{
			SourceName:            source.Name(),
			SourceFileInfo:        source,
			SourceFileSystem:      root.source,
			DestinationName:       destinationName,
			DestinationFileSystem: root.destination,
			Logger:                input.Logger,
			MakeParents:           true,
		})
		for _, warning := range output.Warnings {
			report.AddError(warning)
		}
		if err != nil {
			log(input.Logger, "Error copying file", map[string]interface{}{
				"src": source.Path(),
				"dst": destinationPath,
				"err": err.Error(),
			})
			report.AddError(err)
			return
		}
		report.Copied = append(report.Copied, destinationPath)
		report.Written += output.Written
	case change == ChangeTimestamp:
		log(input.Logger, "TOUCH", map[string]interface{}{
			"dst":      destinationPath,
			"mod_time": source.ModTime(),
		})
		if !input.DryRun {
			err := root.destination.Chtimes(ctx, destinationName, time.Now(), source.ModTime())
			if err != nil {
				report.AddError(NewFileError(WriteFailure, destinationPath, fmt.Errorf("error changing timestamps: %w", err)))
				return
			}
		}
		report.Touched = append(report.Touched, destinationPath)
	}
}
