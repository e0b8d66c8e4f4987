package passhash

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/passhash/internal/pkg/clock"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// derive runs the KDF once a concurrency slot is available. ctx only bounds
// the wait for a slot; a started derivation always runs to completion.
func (h *Hasher) derive(ctx context.Context, password, salt []byte, iterations, keyLen int) ([]byte, error) {
	if err := h.acquire(ctx); err != nil {
		return nil, err
	}
	defer h.release()

	ctx, span := h.tracer.Start(ctx, "passhash.derive", trace.WithAttributes(
		attribute.Int("pbkdf2.iterations", iterations),
		attribute.Int("pbkdf2.key_length", keyLen),
		attribute.Int("pbkdf2.salt_length", len(salt)),
	))
	defer span.End()

	start := h.clock.Now()
	key, err := h.deriveKey(password, salt, iterations, keyLen)
	h.deriveDuration.Record(ctx, clock.Since(h.clock, start).Seconds(),
		metric.WithAttributes(attribute.Bool("success", err == nil)))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "derivation failed")
		return nil, err
	}
	return key, nil
}

func (h *Hasher) deriveKey(password, salt []byte, iterations, keyLen int) (key []byte, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			key, err = nil, derivationError(fmt.Errorf("panic: %v", rvr))
		}
	}()

	key, err = h.crypto.DeriveKey(password, salt, iterations, keyLen)
	if err != nil {
		return nil, derivationError(err)
	}
	if len(key) != keyLen {
		return nil, derivationError(fmt.Errorf("got %d bytes, want %d", len(key), keyLen))
	}
	return key, nil
}

func (h *Hasher) acquire(ctx context.Context) error {
	if h.sema == nil {
		return nil
	}

	select {
	case h.sema <- struct{}{}:
		return nil
	case <-ctx.Done():
		return canceledError(ctx.Err())
	}
}

func (h *Hasher) release() {
	if h.sema != nil {
		<-h.sema
	}
}
