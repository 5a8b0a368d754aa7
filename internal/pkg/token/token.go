package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const rawLen = 32

// New generates a high-entropy one-time verification token. The plaintext
// is only ever embedded in the email link; storage keeps the hash.
func New() (string, error) {
	b := make([]byte, rawLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Hash returns the hex-encoded SHA-256 of a token. Hashing is deterministic
// on purpose: the persisted hash is used inside a DynamoDB condition
// expression, which requires an exact value to compare against.
func Hash(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}

// Equal compares two token hashes in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
