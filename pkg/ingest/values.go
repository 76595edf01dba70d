// pkg/ingest/values.go
package ingest

import (
	"strconv"
	"strings"
)

// parseNumeric attempts to coerce a source value to a float. The empty
// string is reported separately so callers can treat absence as a silent
// default rather than a coercion.
func parseNumeric(s string) (val float64, empty bool, ok bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, true, false
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false, false
	}
	return v, false, true
}

// cleanString trims surrounding whitespace from a source value.
func cleanString(s string) string {
	return strings.TrimSpace(s)
}
