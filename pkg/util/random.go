package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// RandomHex returns n random bytes hex-encoded.
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SaltedHash returns hex(sha256(value + salt)), or "" when either is empty.
func SaltedHash(value, salt string) string {
	if value == "" || salt == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value + salt))
	return hex.EncodeToString(sum[:])
}
