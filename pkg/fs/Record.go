// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

import (
	"encoding/json"
	"os"
	"time"
)

// Record describes a regular file found while enumerating a root.
// Records are produced fresh on every run and never persisted.
type Record struct {
	name    string // relative to the root, e.g., "/a/b.txt"
	path    string // the root joined with name
	mode    os.FileMode
	modTime time.Time
	size    int64
}

func (r *Record) Name() string {
	return r.name
}

func (r *Record) Path() string {
	return r.path
}

func (r *Record) Mode() os.FileMode {
	return r.mode
}

func (r *Record) ModTime() time.Time {
	return r.modTime
}

func (r *Record) Size() int64 {
	return r.size
}

// IsDir is always false, since only regular files are recorded.
func (r *Record) IsDir() bool {
	return false
}

func (r *Record) String() string {
	return r.name
}

func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"modTime": r.modTime,
		"name":    r.name,
		"path":    r.path,
		"size":    r.size,
	})
}

func NewRecord(name string, path string, fi FileInfo) *Record {
	return &Record{
		name:    name,
		path:    path,
		mode:    fi.Mode(),
		modTime: fi.ModTime(),
		size:    fi.Size(),
	}
}
