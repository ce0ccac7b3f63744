package parser

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// XLSXOptions configures spreadsheet extraction.
type XLSXOptions struct {
	// ReadChartHint reads the first embedded chart of the first sheet into Dataset.Hint.
	ReadChartHint bool
	Logger        *zap.Logger
}

// ParseXLSX extracts a dataset from the first worksheet of a workbook.
// Other sheets are ignored. The first non-empty row of the sheet's data
// region supplies the headers.
func ParseXLSX(data []byte, opts XLSXOptions) (ds *models.Dataset, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// excelize indexes shared strings and styles without bounds checks.
	defer func() {
		if r := recover(); r != nil {
			ds = nil
			err = NewParseError(string(FormatXLSX), fmt.Errorf("malformed workbook: %v", r))
		}
	}()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, NewParseError(string(FormatXLSX), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewParseError(string(FormatXLSX), errors.New("no sheets found in workbook"))
	}
	sheetName := sheets[0]

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, NewParseError(string(FormatXLSX), fmt.Errorf("read sheet %q: %w", sheetName, err))
	}

	bounds, ok := findDataBounds(rows)
	if !ok {
		return nil, NewParseError(string(FormatXLSX), fmt.Errorf("first sheet %q has no rows", sheetName))
	}
	grid := cropRows(rows, bounds)

	// Columns past the end of the header row still carry data; give them names.
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	header := make([]string, width)
	copy(header, grid[0])

	ds, err = models.NewDataset(NormalizeHeaders(header))
	if err != nil {
		return nil, NewParseError(string(FormatXLSX), err)
	}

	for _, row := range grid[1:] {
		if isBlankRow(row) {
			continue
		}
		values := make([]models.Value, len(row))
		for i, cell := range row {
			values[i] = parseCellValue(cell)
		}
		ds.AppendRow(values)
	}

	if opts.ReadChartHint {
		hint, err := ReadChartHint(data, sheetName)
		if err != nil {
			logger.Debug("no chart hint", zap.String("sheet", sheetName), zap.Error(err))
		}
		ds.Hint = hint
	}

	logger.Debug("parsed workbook",
		zap.String("sheet", sheetName),
		zap.String("range", bounds.Ref()),
		zap.Int("sheets", len(sheets)),
		zap.Int("headers", len(ds.Headers)),
		zap.Int("rows", ds.Len()))

	ds.Format = string(FormatXLSX)
	return ds, nil
}

// parseCellValue converts a raw cell to a Value.
// Returns a number for numeric text, absent for an empty cell, or the original text.
func parseCellValue(s string) models.Value {
	if s == "" {
		return models.Value{}
	}
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return models.NumberValue(float64(i))
	}
	// Try float; "NaN" and "Inf" stay text
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return models.NumberValue(f)
	}
	return models.StringValue(s)
}
