package parser

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// Compression represents the compression wrapper of an uploaded file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
)

// String returns the string representation of Compression.
func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	default:
		return "none"
	}
}

// DefaultMaxDecompressedBytes is the decompressed size limit used when none
// is configured.
const DefaultMaxDecompressedBytes int64 = 256 << 20

// compressionExtensions maps compression extensions to their Compression.
var compressionExtensions = map[string]Compression{
	"gz":  CompressionGzip,
	"bz2": CompressionBzip2,
	"xz":  CompressionXZ,
}

// Decompress returns the payload of a compressed upload.
// Unlike a streaming reader, a truncated stream is an error: a partial
// dataset is never returned. A payload larger than limit bytes is a
// ParseError; limit <= 0 means DefaultMaxDecompressedBytes.
func Decompress(data []byte, c Compression, limit int64) ([]byte, error) {
	if c == CompressionNone {
		return data, nil
	}

	var reader io.Reader
	switch c {
	case CompressionGzip:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, NewParseError(c.String(), err)
		}
		defer gz.Close()
		reader = gz

	case CompressionBzip2:
		reader = bzip2.NewReader(bytes.NewReader(data))

	case CompressionXZ:
		xzReader, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, NewParseError(c.String(), err)
		}
		reader = xzReader

	default:
		return nil, NewParseError(c.String(), fmt.Errorf("unsupported compression type: %v", c))
	}

	if limit <= 0 {
		limit = DefaultMaxDecompressedBytes
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, NewParseError(c.String(), fmt.Errorf("decompression failed: %w", err))
	}
	if n > limit {
		return nil, NewParseError(c.String(), fmt.Errorf("decompressed payload exceeds %d bytes", limit))
	}
	return buf.Bytes(), nil
}
