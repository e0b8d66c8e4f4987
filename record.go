package passhash

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const recordID = "pbkdf2-sha256"

// Record pairs the salt actually used with the derived hash. Both must be
// stored to verify a password later.
type Record struct {
	// Salt is the raw salt.
	Salt []byte
	// Hash is the lowercase hex encoding of the derived key.
	Hash string
	// Iterations is the PBKDF2 iteration count the hash was derived with.
	Iterations int
}

// HashBytes decodes Hash.
func (r *Record) HashBytes() ([]byte, error) {
	b, err := hex.DecodeString(r.Hash)
	if err != nil {
		return nil, invalidArgument("record hash is not hex: %w", err)
	}
	return b, nil
}

// String encodes the record as
//
//	$pbkdf2-sha256$i=<iterations>$<salt, unpadded std base64>$<hex hash>
func (r *Record) String() string {
	return fmt.Sprintf("$%s$i=%d$%s$%s",
		recordID,
		r.Iterations,
		base64.RawStdEncoding.EncodeToString(r.Salt),
		r.Hash,
	)
}

// ParseRecord decodes the output of Record.String. Any malformed part, an
// iteration count outside MinIterations..MaxIterations or a hash outside
// MinKeyLength..MaxKeyLength bytes is ErrInvalidArgument.
func ParseRecord(s string) (*Record, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 5 || parts[0] != "" {
		return nil, invalidArgument("record: expected 4 '$'-separated fields")
	}

	if parts[1] != recordID {
		return nil, invalidArgument("record: unsupported scheme %q", parts[1])
	}

	rawIter, ok := strings.CutPrefix(parts[2], "i=")
	if !ok {
		return nil, invalidArgument("record: missing iterations field")
	}
	iterations, err := strconv.Atoi(rawIter)
	if err != nil {
		return nil, invalidArgument("record: bad iterations field: %w", err)
	}
	if iterations < MinIterations || iterations > MaxIterations {
		return nil, invalidArgument("record: iterations %d outside %d..%d", iterations, MinIterations, MaxIterations)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, invalidArgument("record: bad salt: %w", err)
	}

	rec := &Record{Salt: salt, Hash: strings.ToLower(parts[4]), Iterations: iterations}
	key, err := rec.HashBytes()
	if err != nil {
		return nil, err
	}
	if len(key) < MinKeyLength || len(key) > MaxKeyLength {
		return nil, invalidArgument("record: hash length %d outside %d..%d bytes", len(key), MinKeyLength, MaxKeyLength)
	}

	return rec, nil
}

// Verify checks password against an encoded record. The record's own
// iteration count and key length are used, so records made with other
// parameters still verify.
func (h *Hasher) Verify(ctx context.Context, password []byte, encoded string) (bool, error) {
	rec, err := ParseRecord(encoded)
	if err != nil {
		return false, err
	}

	expected, err := rec.HashBytes()
	if err != nil {
		return false, err
	}

	derived, err := h.derive(ctx, password, rec.Salt, rec.Iterations, len(expected))
	if err != nil {
		return false, err
	}

	ok := h.equal(expected, derived)
	h.verifyOutcome.Add(ctx, 1, metric.WithAttributes(attribute.Bool("match", ok)))
	return ok, nil
}

// NeedsRehash reports whether an encoded record was made with parameters
// weaker than, or different from, the Hasher's: another iteration count or key
// length, or a salt shorter than SaltLength. Unparseable records need rehash.
func (h *Hasher) NeedsRehash(encoded string) bool {
	rec, err := ParseRecord(encoded)
	if err != nil {
		return true
	}

	return rec.Iterations != h.params.Iterations ||
		hex.DecodedLen(len(rec.Hash)) != h.params.KeyLength ||
		len(rec.Salt) < h.params.SaltLength
}
