// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package rules

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Predicate is a pure function over a path.
type Predicate func(p Path) bool

// Extension matches paths whose extension is one of exts.
func Extension(exts ...string) Predicate {
	return func(p Path) bool {
		for _, ext := range exts {
			if p.Ext == strings.ToLower(ext) {
				return true
			}
		}
		return false
	}
}

// AnySegment matches paths with at least one segment equal to one of names.
func AnySegment(names ...string) Predicate {
	return func(p Path) bool {
		for _, name := range names {
			if p.HasSegment(name) {
				return true
			}
		}
		return false
	}
}

// AllSegments matches paths that contain every one of names as a segment.
func AllSegments(names ...string) Predicate {
	return func(p Path) bool {
		for _, name := range names {
			if !p.HasSegment(name) {
				return false
			}
		}
		return len(names) > 0
	}
}

// SegmentContains matches paths with extension ext where any segment contains marker (case-insensitive).
func SegmentContains(marker string, ext string) Predicate {
	marker = strings.ToLower(marker)
	ext = strings.ToLower(ext)
	return func(p Path) bool {
		if p.Ext != ext {
			return false
		}
		for _, s := range p.Segments {
			if strings.Contains(strings.ToLower(s), marker) {
				return true
			}
		}
		return false
	}
}

// Vendored matches paths under one of the vendored segments, except files with one of the config extensions.
func Vendored(segments []string, configExts []string) Predicate {
	under := AnySegment(segments...)
	config := Extension(configExts...)
	return func(p Path) bool {
		return under(p) && !config(p)
	}
}

// Glob matches paths against a doublestar pattern, e.g., "**/*.tmp" or "build/**".
// A pattern without a slash also matches the base name at any depth.
func Glob(pattern string) (Predicate, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	pattern = strings.TrimPrefix(pattern, "/")
	anyDepth := !strings.Contains(pattern, "/")
	return func(p Path) bool {
		if ok, _ := doublestar.Match(pattern, p.String()); ok {
			return true
		}
		if anyDepth {
			ok, _ := doublestar.Match(pattern, p.Base)
			return ok
		}
		return false
	}, nil
}
