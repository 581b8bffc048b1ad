package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// opaqueTokenBytes of randomness back every bearer token (80 hex chars).
const opaqueTokenBytes = 40

// NewOpaqueToken returns a cryptographically secure random bearer token. It
// is shown to the client once; only HashToken(raw) is stored.
func NewOpaqueToken() (string, error) {
	return randomHex(opaqueTokenBytes)
}

// HashToken returns the SHA-256 hex digest of a raw token. Lookups by this
// digest mean a leaked database row cannot be replayed as a credential.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
