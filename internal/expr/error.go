package expr

import (
	"errors"
	"fmt"
)

// ParseError is the single error kind produced while compiling an
// expression. Pos is the zero-based character offset of the failure in the
// source text.
type ParseError struct {
	Message string
	Pos     int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (at index %d)", e.Message, e.Pos)
}

// Errorf creates a ParseError at pos.
func Errorf(pos int, format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Pos: pos}
}

// AsParseError extracts a ParseError from err.
// Uses errors.As to handle wrapped errors.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
