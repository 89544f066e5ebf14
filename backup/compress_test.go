package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	payload := []byte(`{"metadata":{"version":"1.2.0"},"data":{}}`)

	compressed, err := Compress(payload)
	require.NoError(t, err)
	assert.NotEqual(t, payload, compressed)

	inflated, err := Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, payload, inflated)
}

func TestDecompressRejectsGarbage(t *testing.T) {
	_, err := Decompress([]byte("definitely not gzip"))
	assert.ErrorIs(t, err, ErrNotGzip)
}

func TestIsCompressed(t *testing.T) {
	assert.True(t, IsCompressed("backup-2026-08-30.json.gz", ""))
	assert.True(t, IsCompressed("backup.json", "application/gzip"))
	assert.True(t, IsCompressed("backup.json", "application/x-gzip"))
	assert.False(t, IsCompressed("backup.json", "application/json"))
}
