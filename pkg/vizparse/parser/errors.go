package parser

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat indicates the file extension is not one of csv, xlsx, pdf.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrParse indicates an extractor could not produce a dataset.
var ErrParse = errors.New("parse error")

// UnsupportedFormatError names the extension that could not be dispatched.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return "unsupported file format: no extension"
	}
	return fmt.Sprintf("unsupported file format %q", e.Ext)
}

// Is makes errors.Is(err, ErrUnsupportedFormat) match.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ParseError represents an extractor failure.
type ParseError struct {
	Format string // "csv", "xlsx", "pdf", or a compression name
	Line   int    // 1-based, 0 when unknown
	Column int    // 1-based, 0 when unknown
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s parse error at line %d, column %d: %v", e.Format, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s parse error: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrParse) match.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// NewParseError creates a new ParseError without position information.
func NewParseError(format string, err error) *ParseError {
	return &ParseError{
		Format: format,
		Err:    err,
	}
}
