package parser

import (
	"path/filepath"
	"strings"
)

// Format is a supported input file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// formatExtensions maps lower-case extensions (without the dot) to formats.
var formatExtensions = map[string]Format{
	"csv":  FormatCSV,
	"xlsx": FormatXLSX,
	"pdf":  FormatPDF,
}

// Extension returns the lower-cased substring after the last '.' of the
// file name, or "" when there is none.
func Extension(name string) string {
	base := filepath.Base(name)
	idx := strings.LastIndex(base, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}

// DetectFormat determines the format and compression of a file from its name.
// A compression suffix (.gz, .bz2, .xz) is stripped first and the remaining
// extension decides the format. Matching is case-insensitive and never looks
// at the content.
func DetectFormat(name string) (Format, Compression, error) {
	compression := CompressionNone
	ext := Extension(name)
	if ct, ok := compressionExtensions[ext]; ok {
		compression = ct
		name = name[:len(name)-len(ext)-1]
		ext = Extension(name)
	}

	format, ok := formatExtensions[ext]
	if !ok {
		return "", compression, &UnsupportedFormatError{Ext: ext}
	}
	return format, compression, nil
}
