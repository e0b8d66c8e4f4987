package passhash

import (
	"context"
)

// StringHasher is the string-in, encoded-bytes-out hashing shape used by
// callers that store a single opaque value per password.
type StringHasher interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}

// Encoded adapts a Hasher to StringHasher using the Record text encoding.
type Encoded struct {
	h *Hasher
}

var _ StringHasher = (*Encoded)(nil)

// NewEncoded returns an Encoded adapter. A nil h uses Default().
func NewEncoded(h *Hasher) *Encoded {
	if h == nil {
		h = Default()
	}
	return &Encoded{h: h}
}

// Hash hashes plaintext with a fresh salt and returns the encoded record.
func (e *Encoded) Hash(plaintext string) ([]byte, error) {
	rec, err := e.h.HashString(context.Background(), plaintext, "")
	if err != nil {
		return nil, err
	}
	return []byte(rec.String()), nil
}

// Verify reports whether plaintext matches the encoded record. Any error,
// including a malformed record, is reported as false.
func (e *Encoded) Verify(hashed, plaintext string) bool {
	if hashed == "" {
		return false
	}

	ok, err := e.h.Verify(context.Background(), []byte(plaintext), hashed)
	return err == nil && ok
}
