// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package rules

import (
	"path"
	"path/filepath"
	"strings"
)

// Path is a structured, slash-separated path relative to a root.
type Path struct {
	Segments []string
	Base     string
	Ext      string // lower case, including the dot
}

// ParsePath splits p into segments.  Empty and "." segments are dropped.
func ParsePath(p string) Path {
	segments := []string{}
	for _, s := range strings.Split(filepath.ToSlash(p), "/") {
		if s == "" || s == "." {
			continue
		}
		segments = append(segments, s)
	}
	base := ""
	if len(segments) > 0 {
		base = segments[len(segments)-1]
	}
	return Path{
		Segments: segments,
		Base:     base,
		Ext:      strings.ToLower(path.Ext(base)),
	}
}

// HasSegment returns true if any segment equals name.
func (p Path) HasSegment(name string) bool {
	for _, s := range p.Segments {
		if s == name {
			return true
		}
	}
	return false
}

// String returns the path without a leading slash.
func (p Path) String() string {
	return strings.Join(p.Segments, "/")
}
