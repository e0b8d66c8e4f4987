package passhash

import (
	"sync"

	"github.com/shandysiswandi/passhash/internal/pkg/clock"
	"github.com/shandysiswandi/passhash/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultIterations is the PBKDF2 iteration count of every hash this
	// package has produced so far. Changing it breaks Compare for stored
	// hashes made with the old value; Verify reads the count from the record.
	DefaultIterations = 10000
	// DefaultKeyLength is the derived key length in bytes.
	DefaultKeyLength = 32
	// DefaultSaltLength is the generated salt length in bytes.
	DefaultSaltLength = 32

	// MinIterations is the lowest iteration count New and ParseRecord accept.
	MinIterations = 1000
	// MaxIterations bounds the work a single record can demand.
	MaxIterations = 1_000_000
	// MinKeyLength and MaxKeyLength bound the derived key length in bytes.
	MinKeyLength = 16
	MaxKeyLength = 64
)

// Params are the tunables of a Hasher. Zero values mean "use the default".
type Params struct {
	Iterations    int `config:"iterations" validate:"gte=1000,lte=1000000"`
	KeyLength     int `config:"key_length" validate:"gte=16,lte=64"`
	SaltLength    int `config:"salt_length" validate:"gte=16,lte=1024"`
	MaxConcurrent int `config:"max_concurrent" validate:"gte=0"`
}

func (p Params) withDefaults() Params {
	if p.Iterations == 0 {
		p.Iterations = DefaultIterations
	}
	if p.KeyLength == 0 {
		p.KeyLength = DefaultKeyLength
	}
	if p.SaltLength == 0 {
		p.SaltLength = DefaultSaltLength
	}
	return p
}

var paramsValidator = sync.OnceValues(func() (validator.Validator, error) {
	return validator.NewV10Validator()
})

func (p Params) validate() error {
	v, err := paramsValidator()
	if err != nil {
		return err
	}
	if err := v.Validate(p); err != nil {
		return invalidArgument("params: %w", err)
	}
	return nil
}

// Instrumentation is the part of instrument.Instrumentation a Hasher reads.
// It leaves out Shutdown so callers can pass providers whose lifetime they
// own, such as an SDK setup shared with the rest of their program.
type Instrumentation interface {
	Tracer(name string) trace.Tracer
	Meter(name string) metric.Meter
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithIterations sets the PBKDF2 iteration count (MinIterations to
// MaxIterations).
func WithIterations(n int) Option {
	return func(h *Hasher) { h.params.Iterations = n }
}

// WithKeyLength sets the derived key length in bytes (16 to 64).
func WithKeyLength(n int) Option {
	return func(h *Hasher) { h.params.KeyLength = n }
}

// WithSaltLength sets the generated salt length in bytes (16 to 1024).
// Caller-supplied salts are never checked against it.
func WithSaltLength(n int) Option {
	return func(h *Hasher) { h.params.SaltLength = n }
}

// WithMaxConcurrent bounds the number of derivations running at once on this
// Hasher. Zero disables the limit.
func WithMaxConcurrent(n int) Option {
	return func(h *Hasher) { h.params.MaxConcurrent = n }
}

// WithCrypto replaces the platform crypto capability, typically with a
// deterministic fake in tests.
func WithCrypto(c Crypto) Option {
	return func(h *Hasher) {
		if c != nil {
			h.crypto = c
		}
	}
}

// WithClock replaces the clock used to time derivations.
func WithClock(c clock.Clocker) Option {
	return func(h *Hasher) {
		if c != nil {
			h.clock = c
		}
	}
}

// WithInstrumentation enables a span per derivation, a derivation duration
// histogram and a verification outcome counter. Secrets are never recorded.
func WithInstrumentation(ins Instrumentation) Option {
	return func(h *Hasher) { h.ins = ins }
}
