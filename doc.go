// Package passhash derives salted PBKDF2-HMAC-SHA256 password hashes and
// verifies candidate passwords against them in constant time.
//
// Hash returns a Record holding the salt that was used and the hex-encoded
// derived key. Callers must persist both: the hash alone cannot verify a
// password later. Record.String produces a self-describing text form that
// Verify and ParseRecord accept.
//
//	rec, err := passhash.Hash(ctx, []byte("correct horse"), nil)
//	if err != nil {
//		return err
//	}
//	store(rec.String())
//
//	ok, err := passhash.Default().Verify(ctx, []byte(candidate), stored)
//
// Defaults are 10000 iterations, a 32-byte key and a 32-byte random salt.
// Derivation is CPU bound and blocks the calling goroutine; use HashAsync or
// HashBatch, or your own goroutines, to keep it off latency-sensitive paths.
//
// NewFromFile builds a Hasher from a configuration file and, from its
// instrument.* keys, sets up a masking JSON logger and optional OTLP tracing,
// metrics and log export:
//
//	h, err := passhash.NewFromFile(ctx, "config/passhash.yaml")
//	if err != nil {
//		return err
//	}
//	defer h.Close(ctx)
//
// Stored records are accepted only with MinIterations..MaxIterations
// iterations and a MinKeyLength..MaxKeyLength byte hash.
//
// Errors match ErrRandomnessUnavailable, ErrDerivationFailed,
// ErrInvalidArgument or ErrCanceled with errors.Is. Hashing and verification
// never log, retry or fall back to weaker randomness.
package passhash
