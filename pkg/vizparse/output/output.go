// Package output serializes datasets and chart configurations.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ToJSON serializes v to JSON, indented by two spaces when pretty is set.
// HTML characters are not escaped so header names survive unchanged.
func ToJSON(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteJSON writes v as JSON followed by a newline.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	data, err := ToJSON(v, pretty)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteFile writes v as JSON to path, or to w when path is empty.
func WriteFile(path string, w io.Writer, v any, pretty bool) error {
	if path == "" {
		return WriteJSON(w, v, pretty)
	}
	data, err := ToJSON(v, pretty)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
