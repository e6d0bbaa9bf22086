// Package auth provides credential hashing for user passwords.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor used for every stored digest.
const Cost = 10

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// ErrInvalidHash indicates the digest is not a bcrypt hash.
var ErrInvalidHash = errors.New("invalid hash format")

// Hasher turns plaintext passwords into salted bcrypt digests.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using the fixed work factor.
func NewHasher() *Hasher {
	return &Hasher{cost: Cost}
}

// Hash returns a bcrypt digest of the plaintext.
// Each call draws a fresh salt, so equal inputs produce different digests.
func (h *Hasher) Hash(plaintext string) (string, error) {
	return hashWithCost(plaintext, h.cost)
}

// Verify reports whether plaintext matches the digest.
func (h *Hasher) Verify(plaintext, digest string) (bool, error) {
	return VerifyPassword(plaintext, digest)
}

// HashPassword hashes a password with the default work factor.
func HashPassword(password string) (string, error) {
	return hashWithCost(password, Cost)
}

func hashWithCost(password string, cost int) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("generate bcrypt hash: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword checks a password against a bcrypt digest.
// A wrong password yields false with a nil error.
func VerifyPassword(password, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrInvalidHash
	}
}

// QuickHash returns a truncated SHA256 of the input for log correlation.
// This is NOT for password storage.
func QuickHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}
