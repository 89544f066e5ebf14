package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ComputeChecksum hashes the canonical serialization of the document with
// the checksum field zeroed. Struct field order is fixed, so compact JSON
// over the same shape is deterministic.
func ComputeChecksum(doc Document) (string, error) {
	doc.Metadata.Checksum = ""
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// VerifyChecksum recomputes the digest and compares it to the embedded one.
// The caller owns the policy: match == false means the document was tampered
// with or truncated; a non-nil error means verification itself failed and
// says nothing about integrity either way. Call only when a checksum is
// present — absence is the legacy-document case and is skipped upstream.
func VerifyChecksum(doc Document) (match bool, err error) {
	expected := doc.Metadata.Checksum
	actual, err := ComputeChecksum(doc)
	if err != nil {
		return false, err
	}
	return actual == expected, nil
}
