package results

import (
	"errors"
	"fmt"
	"io/fs"
)

// NotFoundError reports a results file that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("results file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return fs.ErrNotExist }

// ParseError reports a results file that is not well-formed XML or has an
// unexpected structure.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse results %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsParse reports whether err is a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
