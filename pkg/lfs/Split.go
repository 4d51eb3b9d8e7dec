// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package lfs

import (
	"path/filepath"
	"strings"
)

// Split returns the elements of the cleaned path.  An absolute path begins with "/".
func Split(p string) []string {
	p = filepath.ToSlash(filepath.Clean(p))
	dirs := []string{}
	if strings.HasPrefix(p, "/") {
		dirs = append(dirs, "/")
		p = p[1:]
	}
	for _, d := range strings.Split(p, "/") {
		if len(d) == 0 || d == "." {
			continue
		}
		dirs = append(dirs, d)
	}
	return dirs
}
