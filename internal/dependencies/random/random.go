package random

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

// Random provides random token generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// Token generates a URL-safe random token of roughly the given byte length
	Token(length int) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	bound := big.NewInt(int64(n))
	result, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return 0
	}
	return int(result.Int64())
}

// Token generates a URL-safe random token of the given byte length
func (r *CryptoRandom) Token(length int) string {
	if length <= 0 {
		return ""
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
