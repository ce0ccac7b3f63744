package parser

import (
	"strconv"
	"strings"
)

// excelColumnName converts a 0-based index to an Excel-style column name.
// Examples: 0 -> A, 25 -> Z, 26 -> AA, 701 -> ZZ, 702 -> AAA
func excelColumnName(index int) string {
	result := ""
	index++

	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}

	return result
}

// NormalizeHeaders makes a raw header row usable as dataset keys.
//
// Rules:
//   - surrounding whitespace is trimmed
//   - empty headers become Unnamed_A, Unnamed_B, ..., Unnamed_Z, Unnamed_AA, ...
//   - a repeated header gets a _1, _2, ... suffix, in first-seen order
//
// Example:
//
//	Input:  ["name", "", "age", "name", "  "]
//	Output: ["name", "Unnamed_A", "age", "name_1", "Unnamed_B"]
func NormalizeHeaders(header []string) []string {
	normalized := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	emptyCount := 0

	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed_" + excelColumnName(emptyCount)
			emptyCount++
		}
		name := h
		for n := 1; seen[name]; n++ {
			name = h + "_" + strconv.Itoa(n)
		}
		seen[name] = true
		normalized[i] = name
	}

	return normalized
}

// isBlankRow reports whether every cell is empty after trimming.
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
