package models

import (
	"errors"
	"fmt"
)

// ErrUnknownHeader is returned when a lookup names a header the dataset does not have.
var ErrUnknownHeader = errors.New("unknown header")

// ErrInvalidHeaders is returned by NewDataset for an empty or duplicated header list.
var ErrInvalidHeaders = errors.New("invalid header list")

// Record maps a header to the cell value of one row.
// Absent cells are not stored.
type Record map[string]Value

// Dataset is the uniform tabular shape every extractor produces.
type Dataset struct {
	// Headers lists the column names, unique, in first-seen order.
	Headers []string `json:"headers"`
	// Rows holds one record per data row, in file order.
	Rows []Record `json:"rows"`
	// Source is the uploaded file name (no path).
	Source string `json:"source,omitempty"`
	// Format is the extractor that produced the dataset (csv, xlsx, pdf).
	Format string `json:"format,omitempty"`
	// Hint carries chart metadata found in the uploaded file, if any.
	Hint *ChartHint `json:"hint,omitempty"`

	index map[string]int
}

// NewDataset creates an empty dataset with the given headers.
func NewDataset(headers []string) (*Dataset, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: no headers", ErrInvalidHeaders)
	}
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, dup := index[h]; dup {
			return nil, fmt.Errorf("%w: duplicate header %q", ErrInvalidHeaders, h)
		}
		index[h] = i
	}
	hs := make([]string, len(headers))
	copy(hs, headers)
	return &Dataset{Headers: hs, Rows: []Record{}, index: index}, nil
}

// AppendRow adds a row by zipping values positionally against the headers.
// Values beyond the header count are dropped; missing trailing values stay absent.
// It returns the number of dropped values.
func (d *Dataset) AppendRow(values []Value) int {
	rec := make(Record, len(d.Headers))
	for i, h := range d.Headers {
		if i >= len(values) {
			break
		}
		if !values[i].IsAbsent() {
			rec[h] = values[i]
		}
	}
	d.Rows = append(d.Rows, rec)
	if len(values) > len(d.Headers) {
		return len(values) - len(d.Headers)
	}
	return 0
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// HasHeader reports whether h is one of the dataset's headers.
func (d *Dataset) HasHeader(h string) bool {
	_, ok := d.headerIndex()[h]
	return ok
}

// Value returns the cell at row for header h.
func (d *Dataset) Value(row int, h string) (Value, error) {
	if !d.HasHeader(h) {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownHeader, h)
	}
	if row < 0 || row >= len(d.Rows) {
		return Value{}, fmt.Errorf("row %d out of range [0,%d)", row, len(d.Rows))
	}
	return d.Rows[row][h], nil
}

// Column returns every row's value for header h.
func (d *Dataset) Column(h string) ([]Value, error) {
	if !d.HasHeader(h) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHeader, h)
	}
	col := make([]Value, len(d.Rows))
	for i, rec := range d.Rows {
		col[i] = rec[h]
	}
	return col, nil
}

// headerIndex lazily rebuilds the lookup table, which is lost when a
// Dataset is decoded from JSON.
func (d *Dataset) headerIndex() map[string]int {
	if d.index == nil || len(d.index) != len(d.Headers) {
		d.index = make(map[string]int, len(d.Headers))
		for i, h := range d.Headers {
			d.index[h] = i
		}
	}
	return d.index
}
