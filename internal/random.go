package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// secretTokenBytes is the entropy of every opaque secret token (refresh,
// magic-link, password-reset). 32 bytes encodes to 64 hex characters.
const secretTokenBytes = 32

// NewSecretToken generates a raw opaque token and the hash under which it is
// persisted. The raw value is handed to the client exactly once; only the
// hash ever reaches storage.
func NewSecretToken() (raw string, hash string, err error) {
	buf := make([]byte, secretTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	return raw, HashToken(raw), nil
}

// HashToken computes the storage key of a raw token: hex-encoded SHA-256.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
