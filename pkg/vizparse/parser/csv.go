package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// CSVOptions configures delimited-text extraction.
type CSVOptions struct {
	// Delimiter is the field separator. Zero means detect from the header line.
	Delimiter rune
	// Encoding names the text encoding: "" or utf-8, latin1, windows-1252.
	Encoding string
	Logger   *zap.Logger
}

// candidateDelimiters are tried in order; ties go to the earlier entry.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

var utf8BOM = []byte("\xef\xbb\xbf")

// ParseCSV extracts a dataset from delimited text. The first record is the
// header row; every later record becomes one row keyed by header.
func ParseCSV(data []byte, opts CSVOptions) (*models.Dataset, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	text, err := decodeText(data, opts.Encoding)
	if err != nil {
		return nil, NewParseError(string(FormatCSV), err)
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(text)
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = delim
	// Ragged rows are tolerated: missing trailing fields stay absent.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, NewParseError(string(FormatCSV), errors.New("no header row"))
		}
		return nil, csvParseError(err)
	}

	ds, err := models.NewDataset(NormalizeHeaders(header))
	if err != nil {
		return nil, NewParseError(string(FormatCSV), err)
	}

	dropped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvParseError(err)
		}
		values := make([]models.Value, len(record))
		for i, field := range record {
			values[i] = models.StringValue(field)
		}
		dropped += ds.AppendRow(values)
	}

	if dropped > 0 {
		logger.Warn("dropped fields beyond header count",
			zap.Int("fields", dropped),
			zap.Int("headers", len(ds.Headers)))
	}
	logger.Debug("parsed delimited text",
		zap.String("delimiter", string(delim)),
		zap.Int("headers", len(ds.Headers)),
		zap.Int("rows", ds.Len()))

	ds.Format = string(FormatCSV)
	return ds, nil
}

// csvParseError converts an encoding/csv error into a ParseError keeping its position.
func csvParseError(err error) *ParseError {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &ParseError{
			Format: string(FormatCSV),
			Line:   perr.Line,
			Column: perr.Column,
			Err:    perr.Err,
		}
	}
	return NewParseError(string(FormatCSV), err)
}

// DetectDelimiter picks the candidate delimiter that occurs most often,
// outside quotes, on the first line. It falls back to a comma.
func DetectDelimiter(text []byte) rune {
	counts := make(map[rune]int, len(candidateDelimiters))
	inQuotes := false
	for _, r := range string(text) {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		if r == '\n' || r == '\r' {
			break
		}
		counts[r]++
	}

	best, bestCount := ',', 0
	for _, c := range candidateDelimiters {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

// decodeText strips a UTF-8 byte order mark and converts legacy encodings to UTF-8.
func decodeText(data []byte, name string) ([]byte, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8", "utf-8-sig":
		return bytes.TrimPrefix(data, utf8BOM), nil
	case "latin1", "iso-8859-1":
		enc = charmap.ISO8859_1
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	default:
		return nil, fmt.Errorf("unsupported text encoding %q", name)
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}
