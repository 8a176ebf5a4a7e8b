package sinks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Sink stores the exported drawings.
type Sink interface {
	Name() string
	Kind() string
	Write(ctx context.Context, path string, data io.Reader) error
}

// contentTypeFromPath returns the Content-Type based on the file extension.
func contentTypeFromPath(p string) string {
	ext := path.Ext(p)
	switch ext {
	case ".svg", ".svgz":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".json":
		return "application/json"
	case ".html":
		return "text/html"
	case ".txt":
		return "text/plain"
	case ".gz":
		return "application/gzip"
	default:
		return ""
	}
}

// isCompressed reports whether files at `p` are stored gzipped.
func isCompressed(p string) bool {
	return strings.HasSuffix(p, ".svgz") || strings.HasSuffix(p, ".gz")
}

// Encode returns the bytes stored for `data` at `p`:
// .svgz and .gz files are compressed.
func Encode(p string, data []byte) (io.Reader, error) {
	if !isCompressed(p) {
		return bytes.NewReader(data), nil
	}

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress %s: %w", p, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress %s: %w", p, err)
	}
	return &buf, nil
}
