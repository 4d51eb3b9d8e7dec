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
	"io"
	"os"
	"time"
)

const ownerWritable = os.FileMode(0200)

// Copy copies the source file to the destination, creating parent directories if allowed,
// making an existing read-only destination writable, and preserving the permission bits
// and modification time of the source.
func Copy(ctx context.Context, input *CopyInput) (*CopyOutput, error) {
	output := &CopyOutput{}

	sourcePath := input.SourceFileSystem.Join(input.SourceFileSystem.Root(), input.SourceName)
	destinationPath := input.DestinationFileSystem.Join(input.DestinationFileSystem.Root(), input.DestinationName)

	sourceFileInfo := input.SourceFileInfo
	if sourceFileInfo == nil {
		fi, err := input.SourceFileSystem.Stat(ctx, input.SourceName)
		if err != nil {
			return output, NewFileError(ReadFailure, sourcePath, fmt.Errorf("error stating source file: %w", err))
		}
		sourceFileInfo = fi
	}

	// check parent directory and create it if allowed
	parent := input.DestinationFileSystem.Dir(input.DestinationName)
	if _, err := input.DestinationFileSystem.Stat(ctx, parent); err != nil {
		if !input.DestinationFileSystem.IsNotExist(err) {
			return output, NewFileError(WriteFailure, destinationPath, fmt.Errorf("error stating destination parent %q: %w", parent, err))
		}
		if !input.MakeParents {
			return output, NewFileError(WriteFailure, destinationPath, fmt.Errorf("parent directory %q does not exist and parents parameter is false", parent))
		}
		if err := input.DestinationFileSystem.MkdirAll(ctx, parent, 0755); err != nil {
			return output, NewFileError(WriteFailure, destinationPath, fmt.Errorf("error creating parent directories: %w", err))
		}
	}

	// make an existing read-only destination writable, but keep going if that fails
	if destinationFileInfo, err := input.DestinationFileSystem.Stat(ctx, input.DestinationName); err == nil {
		if mode := destinationFileInfo.Mode().Perm(); mode&ownerWritable == 0 {
			if err := input.DestinationFileSystem.Chmod(ctx, input.DestinationName, mode|ownerWritable); err != nil {
				warning := NewFileError(WriteFailure, destinationPath, fmt.Errorf("error making destination writable: %w", err))
				output.Warnings = append(output.Warnings, warning)
				log(input.Logger, "Could not make destination writable", map[string]interface{}{
					"dst": destinationPath,
					"err": err.Error(),
				})
			}
		}
	}

	// open source file
	sourceFile, err := input.SourceFileSystem.Open(ctx, input.SourceName)
	if err != nil {
		return output, NewFileError(ReadFailure, sourcePath, fmt.Errorf("error opening source file: %w", err))
	}

	// open destination file
	destinationFile, err := input.DestinationFileSystem.OpenFile(ctx, input.DestinationName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, sourceFileInfo.Mode().Perm())
	if err != nil {
		_ = sourceFile.Close() // silently close source file
		return output, NewFileError(WriteFailure, destinationPath, fmt.Errorf("error creating destination file: %w", err))
	}

	// copy bytes from source to destination
	written, err := io.Copy(destinationFile, sourceFile)
	if err != nil {
		_ = sourceFile.Close()      // silently close source file
		_ = destinationFile.Close() // silently close destination file
		return output, NewFileError(WriteFailure, destinationPath, fmt.Errorf("error copying from %q: %w", sourcePath, err))
	}
	output.Written = written

	err = sourceFile.Close()
	if err != nil {
		_ = destinationFile.Close() // silently close destination file
		return output, NewFileError(ReadFailure, sourcePath, fmt.Errorf("error closing source file after copying: %w", err))
	}

	err = destinationFile.Close()
	if err != nil {
		return output, NewFileError(WriteFailure, destinationPath, fmt.Errorf("error closing destination file after copying: %w", err))
	}

	// the permission given to OpenFile only applies when the file is created
	err = input.DestinationFileSystem.Chmod(ctx, input.DestinationName, sourceFileInfo.Mode().Perm())
	if err != nil {
		return output, NewFileError(WriteFailure, destinationPath, fmt.Errorf("error changing permissions for destination after copying: %w", err))
	}

	// Preserve Modification time
	err = input.DestinationFileSystem.Chtimes(ctx, input.DestinationName, time.Now(), sourceFileInfo.ModTime())
	if err != nil {
		return output, NewFileError(WriteFailure, destinationPath, fmt.Errorf("error changing timestamps for destination after copying: %w", err))
	}

	return output, nil
}
