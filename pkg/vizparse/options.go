// Package vizparse turns uploaded CSV, XLSX and PDF files into tabular
// datasets that can be charted.
package vizparse

import "go.uber.org/zap"

// Options configures parsing behavior.
type Options struct {
	// Delimiter is the CSV field separator. Zero means detect it.
	Delimiter rune
	// Encoding is the CSV text encoding (utf-8, latin1, windows-1252).
	// Empty means UTF-8.
	Encoding string
	// ReadChartHint reads the chart embedded in a workbook's first sheet,
	// if any, into Dataset.Hint.
	ReadChartHint bool
	// MaxDecompressedBytes caps the size of a decompressed .gz, .bz2 or .xz
	// upload. Zero means parser.DefaultMaxDecompressedBytes.
	MaxDecompressedBytes int64
	// Logger receives debug and warning events. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns default parsing options.
func DefaultOptions() Options {
	return Options{}
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}
