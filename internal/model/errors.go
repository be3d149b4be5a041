package model

import (
	"errors"
	"fmt"
)

// ErrInvalidEncoding is the default cause of a DecodeError
var ErrInvalidEncoding = errors.New("invalid UTF-8 encoding")

// ErrLineTooLong marks a line longer than the reader accepts
var ErrLineTooLong = errors.New("line too long")

// UsageError means the app was launched with missing or malformed arguments
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// SourceError means a named source could not be opened or read
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %q: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// DecodeError marks a single line that could not be decoded; the scan goes on.
// A nil Err means ErrInvalidEncoding.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Unwrap())
}

func (e *DecodeError) Unwrap() error {
	if e.Err == nil {
		return ErrInvalidEncoding
	}
	return e.Err
}
