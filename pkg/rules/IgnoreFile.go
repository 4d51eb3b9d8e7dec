// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package rules

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/afero"
)

// DefaultIgnoreFile is the name of the ignore file read from each source root.
const DefaultIgnoreFile = ".mirrorignore"

// ReadIgnoreFile returns the non-empty, non-comment lines of a gitignore-style file.
// A missing file, or one below a regular file, returns no lines and no error.
func ReadIgnoreFile(fileSystem afero.Fs, name string) ([]string, error) {
	file, err := fileSystem.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return nil, nil
		}
		return nil, fmt.Errorf("error opening ignore file %q: %w", name, err)
	}
	defer func() { _ = file.Close() }() // silently close

	lines := []string{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ignore file %q: %w", name, err)
	}
	return lines, nil
}
