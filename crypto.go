package passhash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

var errKDFParams = errors.New("pbkdf2: iterations and key length must be positive")

// Crypto is the platform capability the Hasher depends on. Implementations
// must be safe for concurrent use.
type Crypto interface {
	// RandomBytes returns n bytes from a cryptographically secure source.
	RandomBytes(n int) ([]byte, error)
	// DeriveKey runs PBKDF2-HMAC-SHA256 over password and salt.
	DeriveKey(password, salt []byte, iterations, keyLen int) ([]byte, error)
	// Equal reports whether a and b are equal without early exit.
	Equal(a, b []byte) bool
}

// SystemCrypto is the default Crypto: crypto/rand, x/crypto/pbkdf2 and
// crypto/subtle.
type SystemCrypto struct {
	// Rand overrides the random source. Nil means crypto/rand.Reader.
	Rand io.Reader
}

var _ Crypto = SystemCrypto{}

// RandomBytes reads exactly n bytes from the random source.
func (s SystemCrypto) RandomBytes(n int) ([]byte, error) {
	r := s.Rand
	if r == nil {
		r = rand.Reader
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// DeriveKey derives keyLen bytes with PBKDF2 using HMAC-SHA256.
func (SystemCrypto) DeriveKey(password, salt []byte, iterations, keyLen int) ([]byte, error) {
	if iterations < 1 || keyLen < 1 {
		return nil, fmt.Errorf("%w (iterations=%d, key_length=%d)", errKDFParams, iterations, keyLen)
	}
	return pbkdf2.Key(password, salt, iterations, keyLen, sha256.New), nil
}

// Equal compares a and b with crypto/subtle.
func (SystemCrypto) Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
