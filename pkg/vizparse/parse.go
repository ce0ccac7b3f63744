package vizparse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/parser"
	"go.uber.org/zap"
)

// Format is a supported input file type.
type Format = parser.Format

// Compression is an outer compression layer recognized by file suffix.
type Compression = parser.Compression

const (
	FormatCSV  = parser.FormatCSV
	FormatXLSX = parser.FormatXLSX
	FormatPDF  = parser.FormatPDF
)

// DetectFormat determines the format and compression of a file from its
// name alone. It never looks at file content.
func DetectFormat(name string) (Format, Compression, error) {
	return parser.DetectFormat(name)
}

type parseResult struct {
	ds  *models.Dataset
	err error
}

// Parse converts the bytes of an uploaded file into a dataset. The
// extractor is chosen by the file name's extension.
//
// Parse returns when the extractor finishes or ctx is done, whichever
// comes first. On cancellation the extractor's eventual result is
// discarded.
func Parse(ctx context.Context, name string, data []byte, opts Options) (*models.Dataset, error) {
	logger := opts.logger()

	format, compression, err := parser.DetectFormat(name)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	done := make(chan parseResult, 1)
	go func() {
		// A panic here would escape every caller's recover.
		defer func() {
			if r := recover(); r != nil {
				done <- parseResult{err: parser.NewParseError(string(format), fmt.Errorf("extractor panic: %v", r))}
			}
		}()
		ds, err := extract(data, format, compression, opts)
		done <- parseResult{ds: ds, err: err}
	}()

	select {
	case <-ctx.Done():
		logger.Warn("parse abandoned",
			zap.String("file", name),
			zap.String("format", string(format)),
			zap.Error(ctx.Err()))
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			logger.Debug("parse failed",
				zap.String("file", name),
				zap.String("format", string(format)),
				zap.Error(res.err))
			return nil, res.err
		}
		res.ds.Source = filepath.Base(name)
		logger.Debug("parsed file",
			zap.String("file", name),
			zap.String("format", string(format)),
			zap.Stringer("compression", compression),
			zap.Int("columns", len(res.ds.Headers)),
			zap.Int("rows", res.ds.Len()),
			zap.Duration("elapsed", time.Since(start)))
		return res.ds, nil
	}
}

// ParseFile reads the file at path and parses it.
func ParseFile(ctx context.Context, path string, opts Options) (*models.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(ctx, path, data, opts)
}

func extract(data []byte, format Format, compression Compression, opts Options) (*models.Dataset, error) {
	data, err := parser.Decompress(data, compression, opts.MaxDecompressedBytes)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return parser.ParseCSV(data, parser.CSVOptions{
			Delimiter: opts.Delimiter,
			Encoding:  opts.Encoding,
			Logger:    opts.Logger,
		})
	case FormatXLSX:
		return parser.ParseXLSX(data, parser.XLSXOptions{
			ReadChartHint: opts.ReadChartHint,
			Logger:        opts.Logger,
		})
	case FormatPDF:
		return parser.ParsePDF(data, parser.PDFOptions{Logger: opts.Logger})
	default:
		return nil, &UnsupportedFormatError{Ext: string(format)}
	}
}
