// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package lfs

import (
	"path"
)

// Dir returns all but the last element of the path.
func Dir(p string) string {
	directories := Split(p)
	switch len(directories) {
	case 0:
		return "."
	case 1:
		if directories[0] == "/" {
			return "/"
		}
		return "."
	}
	return path.Join(directories[0 : len(directories)-1]...)
}
