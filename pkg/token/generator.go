// Package token provides identifier generation and comparison utilities.
package token

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// Alphabet is the character set used for generated identifiers.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength is the default identifier length in characters.
const DefaultLength = 20

// ErrInvalidLength is returned when a non-positive length is requested.
var ErrInvalidLength = errors.New("token: length must be positive")

// Generate generates a DefaultLength identifier over Alphabet.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength generates an identifier of the given length over Alphabet.
func GenerateWithLength(length int) (string, error) {
	return GenerateFrom(Alphabet, length)
}

// GenerateFrom generates an identifier of the given length whose characters
// are drawn uniformly from alphabet.
func GenerateFrom(alphabet string, length int) (string, error) {
	if length <= 0 || alphabet == "" {
		return "", ErrInvalidLength
	}

	size := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

// GenerateBytes generates random bytes.
func GenerateBytes(length int) ([]byte, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return nil, err
	}
	return bytes, nil
}

// IsValid reports whether s has the given length and only uses Alphabet characters.
func IsValid(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
