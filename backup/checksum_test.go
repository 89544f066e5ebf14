package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		Metadata: Metadata{
			Version:      CurrentVersion,
			ExportedAt:   "2026-08-30T10:00:00Z",
			TotalRecords: 2,
		},
		Company: CompanySection{
			Users: []UserRecord{{ID: "u1", Name: "Amina", Email: "amina@example.com", Role: "OWNER"}},
		},
		Data: DataSection{
			Products: []ProductRecord{
				{ID: 1, SKU: "SKU-1", Name: "Clavier", Price: 250, Stock: 10, Active: true},
				{ID: 2, SKU: "SKU-2", Name: "Souris", Price: 120, Stock: 4, Active: true},
			},
		},
	}
}

func TestComputeChecksumDeterministic(t *testing.T) {
	doc := sampleDocument()

	first, err := ComputeChecksum(doc)
	require.NoError(t, err)
	second, err := ComputeChecksum(doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestComputeChecksumIgnoresStoredChecksum(t *testing.T) {
	doc := sampleDocument()
	blank, err := ComputeChecksum(doc)
	require.NoError(t, err)

	doc.Metadata.Checksum = "deadbeef"
	stamped, err := ComputeChecksum(doc)
	require.NoError(t, err)

	assert.Equal(t, blank, stamped)
}

func TestVerifyChecksum(t *testing.T) {
	doc := sampleDocument()
	sum, err := ComputeChecksum(doc)
	require.NoError(t, err)
	doc.Metadata.Checksum = sum

	match, err := VerifyChecksum(doc)
	require.NoError(t, err)
	assert.True(t, match)

	// A single mutated field must break the match.
	doc.Data.Products[0].Price = 999
	match, err = VerifyChecksum(doc)
	require.NoError(t, err)
	assert.False(t, match)
}
