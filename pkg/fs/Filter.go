// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

// Filter decides which paths are left alone.  Paths are relative to the source root.
type Filter interface {
	// Excluded returns the name of the rule if the path is never copied nor deleted.
	Excluded(p string) (string, bool)
	// Protected returns the name of the rule if the path is never deleted.
	Protected(p string) (string, bool)
}

type noFilter struct{}

func (noFilter) Excluded(p string) (string, bool) {
	return "", false
}

func (noFilter) Protected(p string) (string, bool) {
	return "", false
}
