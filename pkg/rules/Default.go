// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package rules

var (
	// DefaultProtectedSegments are version control metadata directories.
	DefaultProtectedSegments = []string{".git", ".svn", ".hg"}
	// DefaultVendoredSegments are third-party SDK trees managed outside of the mirror.
	DefaultVendoredSegments = []string{"SDK"}
	// DefaultVendoredConfigExtensions are files inside vendored trees that are still mirrored and pruned.
	DefaultVendoredConfigExtensions = []string{".bff"}
)

// Default returns the standard rule set.
func Default() *Rules {
	return New().
		Exclude("backup", Extension(".bak")).
		Exclude("build database", Extension(".fdb")).
		Exclude("worker state", Extension(".copy", ".settings")).
		Exclude("profile", SegmentContains("profile", ".json")).
		Exclude("default profile", AnySegment("%ALLUSERSPROFILE%")).
		Exclude("ide templates", AnySegment("ItemTemplates", "ProjectTemplates", "ProjectTemplatesCache")).
		Exclude("ide extensions", AllSegments("IDE", "Extensions")).
		Protect("version control", AnySegment(DefaultProtectedSegments...)).
		Protect("vendored", Vendored(DefaultVendoredSegments, DefaultVendoredConfigExtensions))
}
