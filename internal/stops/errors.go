package stops

import (
	"errors"
	"fmt"
)

// ErrNoHeader is wrapped by ParseError when the text has no header row
var ErrNoHeader = errors.New("header row is absent")

// ParseError is returned when a table cannot be read at all. Individual
// malformed rows never produce one; they are skipped.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing stop table: %s: %v", e.Reason, e.Err)
	}
	return "parsing stop table: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SourceLoadError is returned when the stop table could not be fetched
type SourceLoadError struct {
	Source string
	Err    error
}

func (e *SourceLoadError) Error() string {
	return fmt.Sprintf("loading stops from %s: %v", e.Source, e.Err)
}

func (e *SourceLoadError) Unwrap() error {
	return e.Err
}
