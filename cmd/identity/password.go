package identity

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the fixed work factor for credential hashing.
// It is intentionally a constant, not runtime configuration.
const bcryptCost = 10

// HashPassword returns a salted bcrypt hash of the plaintext credential.
func HashPassword(plain string) (string, error) {
	if strings.TrimSpace(plain) == "" {
		return "", OpError{Op: "identity.HashPassword", Kind: ErrInvalidInput, Msg: "empty password"}
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword checks a plaintext credential against a stored bcrypt hash.
// A wrong password is an ordinary false, never an error.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
