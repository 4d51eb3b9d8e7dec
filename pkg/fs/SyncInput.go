// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

import (
	"time"
)

type SyncInput struct {
	Roots              []RootPair
	Filter             Filter
	NewFileSystem      FileSystemFactory
	DryRun             bool // classify and report, but do not write
	Debug              bool // log skipped paths
	Logger             Logger
	TimestampPrecision time.Duration
}
