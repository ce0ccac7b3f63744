package parser

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
	"go.uber.org/zap"
)

// PDFOptions configures PDF extraction.
type PDFOptions struct {
	Logger *zap.Logger
}

// ParsePDF extracts a dataset from the text of the first page of a PDF.
//
// This is a best-effort heuristic. The page's text rows are read top to
// bottom; the first non-blank row is split on whitespace into headers and
// every later row is split on whitespace and zipped positionally against
// them. Cell boundaries, multi-page tables and cells containing spaces are
// not recognized.
func ParsePDF(data []byte, opts PDFOptions) (ds *models.Dataset, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// The decoder panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			ds = nil
			err = NewParseError(string(FormatPDF), fmt.Errorf("malformed document: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, NewParseError(string(FormatPDF), err)
	}
	if reader.NumPage() == 0 {
		return nil, NewParseError(string(FormatPDF), errors.New("document has no pages"))
	}

	page := reader.Page(1)
	if page.V.IsNull() {
		return nil, NewParseError(string(FormatPDF), errors.New("first page is missing"))
	}

	lines, err := pageLines(page)
	if err != nil {
		return nil, NewParseError(string(FormatPDF), fmt.Errorf("read page 1: %w", err))
	}

	var fragments []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			fragments = append(fragments, trimmed)
		}
	}
	if len(fragments) == 0 {
		return nil, NewParseError(string(FormatPDF), errors.New("first page has no text"))
	}

	ds, err = models.NewDataset(NormalizeHeaders(strings.Fields(fragments[0])))
	if err != nil {
		return nil, NewParseError(string(FormatPDF), err)
	}

	dropped := 0
	for _, line := range fragments[1:] {
		fields := strings.Fields(line)
		values := make([]models.Value, len(fields))
		for i, field := range fields {
			values[i] = models.StringValue(field)
		}
		dropped += ds.AppendRow(values)
	}

	if dropped > 0 {
		logger.Debug("dropped words beyond header count", zap.Int("words", dropped))
	}
	logger.Debug("parsed pdf page",
		zap.Int("pages", reader.NumPage()),
		zap.Int("fragments", len(fragments)),
		zap.Int("headers", len(ds.Headers)),
		zap.Int("rows", ds.Len()))

	ds.Format = string(FormatPDF)
	return ds, nil
}

// pageLines groups the text fragments of a page into rows sharing a baseline,
// top to bottom, left to right.
func pageLines(page pdf.Page) ([]string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, err
	}

	// PDF y grows upwards.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position > rows[j].Position
	})

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		texts := append(pdf.TextHorizontal(nil), row.Content...)
		sort.SliceStable(texts, func(i, j int) bool {
			return texts[i].X < texts[j].X
		})
		lines = append(lines, joinFragments(texts))
	}
	return lines, nil
}

// joinFragments concatenates the text fragments of a row. Fragments come
// from separate text-showing operations, so they are separated by a space.
func joinFragments(texts []pdf.Text) string {
	var b strings.Builder
	for i, t := range texts {
		if i > 0 && !strings.HasSuffix(texts[i-1].S, " ") && !strings.HasPrefix(t.S, " ") {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
	}
	return b.String()
}
