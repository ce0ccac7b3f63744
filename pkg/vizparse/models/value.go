// Package models defines the data structures shared by the extractors,
// the chart inferrer and the presentation boundary.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the content of a Value.
type Kind uint8

const (
	// KindAbsent marks a missing cell.
	KindAbsent Kind = iota
	// KindString marks a text cell.
	KindString
	// KindNumber marks a numeric cell.
	KindNumber
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "absent"
	}
}

// Value is a single cell of a dataset: a string, a number, or absent.
// The zero Value is absent.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// StringValue returns a text Value.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// NumberValue returns a numeric Value.
func NumberValue(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the cell is missing.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Text renders the value as a chart label.
// Numbers use the shortest representation that round-trips; absent renders as "".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Float coerces the value to a number.
// Absent and blank values are not numeric, and neither is anything that
// converts to NaN or an infinity. Text is trimmed before parsing.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		if !finite(v.num) {
			return 0, false
		}
		return v.num, true
	case KindString:
		s := strings.TrimSpace(v.str)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || !finite(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsNumeric reports whether Float succeeds.
func (v Value) IsNumeric() bool {
	_, ok := v.Float()
	return ok
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	default:
		return true
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.kind == KindAbsent {
		return "<absent>"
	}
	return v.Text()
}

// MarshalJSON encodes absent as null, numbers as JSON numbers and text as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return marshalString(v.str)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			// JSON has no representation for these; fall back to text.
			return marshalString(v.Text())
		}
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// marshalString leaves <, > and & as they are. The caller's encoder decides
// whether to escape them.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("cell value must be a string, number or null: %w", err)
	}
	*v = NumberValue(f)
	return nil
}
