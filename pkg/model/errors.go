// pkg/model/errors.go
package model

import (
	"errors"
	"fmt"
)

// The three recoverable pipeline conditions. All of them are user-facing:
// staff correct the input and retry; none of them corrupts tables ingested
// earlier in the session.

// ErrNoCommonKey is returned by the joiner when neither ssn nor student_id
// is present in both tables. The merge is impossible until the inputs carry
// a shared identifier.
var ErrNoCommonKey = errors.New("no common identifier found (ssn or student_id)")

// ErrMissingAttribute is returned by the aggregator when the merged table
// carries no grouping attribute. Callers degrade to "no analysis available"
// rather than failing.
var ErrMissingAttribute = errors.New("no major or program attribute in merged data")

// ParseError reports a byte stream that was not valid for its declared
// format. It halts processing for that file only.
type ParseError struct {
	Filename string
	Format   string // "csv" or "xlsx"
	Err      error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s as %s: %v", e.Filename, e.Format, e.Err)
}

// Unwrap returns the underlying parse failure.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError wraps a format-level parse failure.
func NewParseError(filename, format string, err error) *ParseError {
	return &ParseError{Filename: filename, Format: format, Err: err}
}
