// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"time"
)

// EqualTimestamp returns true if a and b are equal when truncated to the precision d.
// A precision of zero or less compares the timestamps exactly.
func EqualTimestamp(a time.Time, b time.Time, d time.Duration) bool {
	if d <= 0 {
		return a.Equal(b)
	}
	return a.Truncate(d).Equal(b.Truncate(d))
}
