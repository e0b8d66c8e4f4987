package passhash

import (
	"context"
	"encoding/hex"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Compare derives a key from password and salt with the Hasher's parameters
// and compares it with expected, the raw derived bytes, in constant time.
//
// It returns true only on an exact match. An expected value of a different
// length returns false, not an error, after the same comparison work as a
// mismatch. A nil salt is ErrInvalidArgument.
func (h *Hasher) Compare(ctx context.Context, password, salt, expected []byte) (bool, error) {
	if salt == nil {
		return false, invalidArgument("salt is required for verification")
	}

	derived, err := h.derive(ctx, password, salt, h.params.Iterations, h.params.KeyLength)
	if err != nil {
		return false, err
	}

	ok := h.equal(expected, derived)
	h.verifyOutcome.Add(ctx, 1, metric.WithAttributes(attribute.Bool("match", ok)))
	return ok, nil
}

// CompareHex is Compare with expected given as the hex string returned in
// Record.Hash. Malformed hex is ErrInvalidArgument.
func (h *Hasher) CompareHex(ctx context.Context, password, salt []byte, expectedHex string) (bool, error) {
	expected, err := hex.DecodeString(expectedHex)
	if err != nil {
		return false, invalidArgument("expected hash is not hex: %w", err)
	}
	return h.Compare(ctx, password, salt, expected)
}

// equal never exits early. On a length mismatch it still performs a full
// comparison of derived against itself so the cost does not depend on the
// expected value.
func (h *Hasher) equal(expected, derived []byte) bool {
	if len(expected) != len(derived) {
		h.crypto.Equal(derived, derived)
		return false
	}
	return h.crypto.Equal(expected, derived)
}
