package parser

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		format      Format
		compression Compression
		unsupported bool
	}{
		{"a.csv", FormatCSV, CompressionNone, false},
		{"a.CSV", FormatCSV, CompressionNone, false},
		{"report.final.Xlsx", FormatXLSX, CompressionNone, false},
		{"/tmp/scan.pdf", FormatPDF, CompressionNone, false},
		{"data.csv.gz", FormatCSV, CompressionGzip, false},
		{"data.CSV.XZ", FormatCSV, CompressionXZ, false},
		{"book.xlsx.bz2", FormatXLSX, CompressionBzip2, false},
		{"notes.txt", "", CompressionNone, true},
		{"archive.gz", "", CompressionGzip, true},
		{"noext", "", CompressionNone, true},
		{"legacy.xls", "", CompressionNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, compression, err := DetectFormat(tt.name)
			if tt.unsupported {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.compression, compression)
		})
	}
}

func TestUnsupportedFormatErrorMessage(t *testing.T) {
	_, _, err := DetectFormat("notes.TXT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"txt"`)
}

func TestDecompress(t *testing.T) {
	payload := []byte("a,b\n1,2\n")

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	var xzBuf bytes.Buffer
	xw, err := xz.NewWriter(&xzBuf)
	require.NoError(t, err)
	_, err = xw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, xw.Close())

	got, err := Decompress(gz.Bytes(), CompressionGzip, 0)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	got, err = Decompress(xzBuf.Bytes(), CompressionXZ, 0)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	got, err = Decompress(payload, CompressionNone, 0)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDecompressCorrupt(t *testing.T) {
	_, err := Decompress([]byte("definitely not gzip"), CompressionGzip, 0)
	assert.ErrorIs(t, err, ErrParse)

	_, err = Decompress([]byte("definitely not xz"), CompressionXZ, 0)
	assert.ErrorIs(t, err, ErrParse)
}

func TestDecompressLimit(t *testing.T) {
	payload := bytes.Repeat([]byte("0"), 1024)

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	got, err := Decompress(gz.Bytes(), CompressionGzip, 1024)
	require.NoError(t, err)
	assert.Len(t, got, 1024)

	_, err = Decompress(gz.Bytes(), CompressionGzip, 1023)
	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorContains(t, err, "exceeds 1023 bytes")
}

func TestNormalizeHeaders(t *testing.T) {
	tests := []struct {
		input    []string
		expected []string
	}{
		{[]string{"name", "", "age", "  ", "city"}, []string{"name", "Unnamed_A", "age", "Unnamed_B", "city"}},
		{[]string{"x", "x", "x"}, []string{"x", "x_1", "x_2"}},
		{[]string{"x", "x_1", "x"}, []string{"x", "x_1", "x_2"}},
		{[]string{" padded "}, []string{"padded"}},
		{[]string{}, []string{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeHeaders(tt.input))
	}
}

func TestExcelColumnName(t *testing.T) {
	tests := []struct {
		index    int
		expected string
	}{
		{0, "A"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{701, "ZZ"},
		{702, "AAA"},
	}

	for _, tt := range tests {
		result := excelColumnName(tt.index)
		if result != tt.expected {
			t.Errorf("excelColumnName(%d) = %q, expected %q", tt.index, result, tt.expected)
		}
	}
}
