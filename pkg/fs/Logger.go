// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

// Logger receives one line per action taken by the engine, such as COPY, TOUCH, KEEP, or DELETE.
// Paths are logged under "src" and "dst".
type Logger interface {
	Log(msg string, fields ...map[string]interface{}) error
}

// log writes to the logger, if any, and drops logging errors.
func log(logger Logger, msg string, fields map[string]interface{}) {
	if logger != nil {
		_ = logger.Log(msg, fields)
	}
}
