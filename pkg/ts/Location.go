// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package ts

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ParseLocation parses "Local", "UTC", an IANA zone name, or an offset from UTC in hours,
// such as "-7", "UTC-7", or "+05:30".
func ParseLocation(location string) (*time.Location, error) {
	if location == "" {
		return nil, errors.New("cannot parse location from empty string")
	}
	if location == "Local" {
		return time.Local, nil
	}
	if offset, ok := parseOffset(strings.TrimPrefix(location, "UTC")); ok {
		return time.FixedZone(location, offset), nil
	}
	return time.LoadLocation(location)
}

// parseOffset returns the offset in seconds of "-7", "+7", or "+05:30".
func parseOffset(s string) (int, bool) {
	if len(s) == 0 {
		return 0, false
	}
	hours, minutes, found := strings.Cut(s, ":")
	h, err := strconv.Atoi(hours)
	if err != nil || h < -14 || h > 14 {
		return 0, false
	}
	m := 0
	if found {
		m, err = strconv.Atoi(minutes)
		if err != nil || m < 0 || m > 59 {
			return 0, false
		}
		if strings.HasPrefix(hours, "-") {
			m = -m
		}
	}
	return h*60*60 + m*60, true
}
