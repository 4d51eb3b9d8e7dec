// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

import (
	"go.uber.org/multierr"
)

// Report is the outcome of a run.  Paths are absolute destination paths,
// except Missing, which lists source roots.
type Report struct {
	Copied  []string
	Touched []string // timestamps normalized, content untouched
	Deleted []string
	Skipped []string // excluded or protected
	Missing []string
	Errors  []error
	Written int64
}

func NewReport() *Report {
	return &Report{
		Copied:  []string{},
		Touched: []string{},
		Deleted: []string{},
		Skipped: []string{},
		Missing: []string{},
		Errors:  []error{},
	}
}

func (r *Report) AddError(err error) {
	if err != nil {
		r.Errors = append(r.Errors, err)
	}
}

// Changes returns the number of files copied, touched, or deleted.
func (r *Report) Changes() int {
	return len(r.Copied) + len(r.Touched) + len(r.Deleted)
}

// OK returns true if no error occurred.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Err returns all errors combined, or nil.
func (r *Report) Err() error {
	return multierr.Combine(r.Errors...)
}
