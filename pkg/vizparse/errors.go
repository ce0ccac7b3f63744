package vizparse

import "github.com/ukaji3/vizparse-go/pkg/vizparse/parser"

// ErrUnsupportedFormat indicates the file extension is not csv, xlsx or pdf.
var ErrUnsupportedFormat = parser.ErrUnsupportedFormat

// ErrParse indicates an extractor failure: malformed bytes, an empty
// document or sheet. No partial dataset accompanies it.
var ErrParse = parser.ErrParse

// ParseError represents an extractor failure with its position when known.
type ParseError = parser.ParseError

// UnsupportedFormatError names the extension that could not be dispatched.
type UnsupportedFormatError = parser.UnsupportedFormatError
