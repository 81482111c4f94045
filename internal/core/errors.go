package core

import (
	"errors"
	"fmt"
)

// Error codes exposed to API clients.
const (
	CodeParse         = "PARSE_ERROR"
	CodeInvalidFormat = "INVALID_FORMAT"
	CodeFetch         = "FETCH_FAILED"
	CodeSchema        = "SCHEMA_MISMATCH"
)

var (
	ErrParse         = errors.New("parse error")
	ErrInvalidFormat = errors.New("invalid format")
	ErrFetch         = errors.New("fetch failed")
	ErrSchema        = errors.New("schema mismatch")
)

// ParseError reports a value that could not be parsed during aggregation
// or decoding.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error        { return e.Err }
func (e *ParseError) Is(target error) bool { return target == ErrParse }
func (e *ParseError) Code() string         { return CodeParse }

// InvalidFormatError is returned when an uploaded file does not carry an
// accepted extension.
type InvalidFormatError struct {
	Filename string
	Allowed  []string
}

func (e *InvalidFormatError) Error() string {
	return "Invalid file format. Please upload a CSV file."
}

func (e *InvalidFormatError) Is(target error) bool { return target == ErrInvalidFormat }
func (e *InvalidFormatError) Code() string         { return CodeInvalidFormat }

// FetchError reports a data supplier that was unavailable or answered with
// a non-success result.
type FetchError struct {
	Source string
	Op     string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %v", e.Op, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error        { return e.Err }
func (e *FetchError) Is(target error) bool { return target == ErrFetch }
func (e *FetchError) Code() string         { return CodeFetch }

// SchemaError reports a supplied transaction that failed validation.
type SchemaError struct {
	Index int
	ID    string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("transaction %d (id=%q): %v", e.Index, e.ID, e.Err)
}

func (e *SchemaError) Unwrap() error        { return e.Err }
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
func (e *SchemaError) Code() string         { return CodeSchema }

// ErrorCode returns the code of the first coded error in err's chain, or
// an empty string.
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}
