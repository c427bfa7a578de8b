package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HostTokenBytes is the entropy of a host token, hex encoded on the wire.
const HostTokenBytes = 32

// NewHostToken returns a fixed length token drawn from crypto/rand.
func NewHostToken() (string, error) {
	b := make([]byte, HostTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// IsWellFormedHostToken reports whether token has the shape NewHostToken produces.
func IsWellFormedHostToken(token string) bool {
	if len(token) != HostTokenBytes*2 {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}

// HashHostToken returns the hex encoded SHA-256 of a host token.
// Only the hash is ever written to disk.
func HashHostToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// HostTokenMatches compares token against a stored hash in constant time.
func HostTokenMatches(token, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashHostToken(token)), []byte(storedHash)) == 1
}
