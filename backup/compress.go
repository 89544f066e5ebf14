package backup

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ErrNotGzip distinguishes a corrupt/invalid gzip payload from a JSON parse
// failure further down the pipeline.
var ErrNotGzip = errors.New("le fichier est corrompu ou n'est pas un gzip valide")

// Compress gzips the serialized document for the export download path.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress inflates an uploaded .gz document.
func Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotGzip
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, ErrNotGzip
	}
	return out, nil
}

// IsCompressed detects gzip framing from the file extension or the declared
// content type; the HTTP-level signal, not metadata.compressed, is what
// consumers rely on.
func IsCompressed(filename, contentType string) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".gz") {
		return true
	}
	switch strings.ToLower(contentType) {
	case "application/gzip", "application/x-gzip":
		return true
	}
	return false
}
