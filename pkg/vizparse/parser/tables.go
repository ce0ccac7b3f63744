package parser

import "fmt"

// DataRange is the bounding box of the non-empty cells of a sheet, 0-based and inclusive.
type DataRange struct {
	MinRow, MaxRow int
	MinCol, MaxCol int
}

// Ref returns the range in A1 notation, e.g. "C3:E6".
func (r DataRange) Ref() string {
	return fmt.Sprintf("%s%d:%s%d",
		excelColumnName(r.MinCol), r.MinRow+1,
		excelColumnName(r.MaxCol), r.MaxRow+1)
}

// findDataBounds finds the bounding box of non-empty cells.
// ok is false when every cell is empty.
func findDataBounds(rows [][]string) (r DataRange, ok bool) {
	r = DataRange{MinRow: -1, MaxRow: -1, MinCol: -1, MaxCol: -1}

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell == "" {
				continue
			}
			if r.MinRow < 0 || rowIdx < r.MinRow {
				r.MinRow = rowIdx
			}
			if rowIdx > r.MaxRow {
				r.MaxRow = rowIdx
			}
			if r.MinCol < 0 || colIdx < r.MinCol {
				r.MinCol = colIdx
			}
			if colIdx > r.MaxCol {
				r.MaxCol = colIdx
			}
		}
	}

	return r, r.MinRow >= 0
}

// cropToData returns the cells inside the data bounding box, so a table that
// starts at C3 is read as if it started at A1. Short rows stay short.
func cropToData(rows [][]string) [][]string {
	bounds, ok := findDataBounds(rows)
	if !ok {
		return nil
	}
	return cropRows(rows, bounds)
}

func cropRows(rows [][]string, bounds DataRange) [][]string {
	out := make([][]string, 0, bounds.MaxRow-bounds.MinRow+1)
	for rowIdx := bounds.MinRow; rowIdx <= bounds.MaxRow; rowIdx++ {
		row := rows[rowIdx]
		var cropped []string
		if bounds.MinCol < len(row) {
			end := len(row)
			if end > bounds.MaxCol+1 {
				end = bounds.MaxCol + 1
			}
			cropped = row[bounds.MinCol:end]
		}
		out = append(out, cropped)
	}
	return out
}
