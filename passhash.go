package passhash

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/samber/lo"
	"github.com/shandysiswandi/passhash/internal/pkg/clock"
	"github.com/shandysiswandi/passhash/internal/pkg/config"
	"github.com/shandysiswandi/passhash/internal/pkg/instrument"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/shandysiswandi/passhash"

var _ Instrumentation = instrument.Instrumentation(nil)

// Hasher hashes and verifies passwords with fixed parameters. It holds no
// per-call state and is safe for concurrent use.
type Hasher struct {
	params Params
	crypto Crypto
	clock  clock.Clocker
	ins    Instrumentation
	sema   chan struct{}

	closers   []func(context.Context) error
	closeOnce sync.Once
	closeErr  error

	tracer         trace.Tracer
	deriveDuration metric.Float64Histogram
	verifyOutcome  metric.Int64Counter
}

// New returns a Hasher using the defaults unless overridden by opts.
// Out-of-range parameters yield ErrInvalidArgument.
func New(opts ...Option) (*Hasher, error) {
	h := &Hasher{
		crypto: SystemCrypto{},
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.params = h.params.withDefaults()
	if err := h.params.validate(); err != nil {
		return nil, err
	}

	if h.params.MaxConcurrent > 0 {
		h.sema = make(chan struct{}, h.params.MaxConcurrent)
	}

	if err := h.initInstruments(); err != nil {
		return nil, err
	}

	return h, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Hasher {
	h, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return h
}

// ConfigReader is the subset of a configuration source NewFromConfig reads.
type ConfigReader interface {
	GetInt(key string) int
}

// NewFromConfig builds a Hasher from the passhash.* keys of cfg
// (iterations, key_length, salt_length, max_concurrent). Missing keys use the
// defaults; opts are applied afterwards and win.
func NewFromConfig(cfg ConfigReader, opts ...Option) (*Hasher, error) {
	if cfg == nil {
		return nil, invalidArgument("config is nil")
	}

	fromCfg := func(h *Hasher) {
		h.params = Params{
			Iterations:    cfg.GetInt("passhash.iterations"),
			KeyLength:     cfg.GetInt("passhash.key_length"),
			SaltLength:    cfg.GetInt("passhash.salt_length"),
			MaxConcurrent: cfg.GetInt("passhash.max_concurrent"),
		}
	}
	return New(append([]Option{fromCfg}, opts...)...)
}

// NewFromFile loads a configuration file (any format Viper reads, chosen by
// extension), sets up logging, tracing and metrics from its instrument.* keys
// and builds a Hasher from its passhash.* keys. Parameters are fixed at
// construction; later edits to the file are logged but not applied. Call
// Close to flush telemetry.
func NewFromFile(ctx context.Context, path string, opts ...Option) (*Hasher, error) {
	cfg, err := config.NewViper(path)
	if err != nil {
		return nil, invalidArgument("config %q: %w", path, err)
	}

	ins, err := instrument.New(ctx, instrument.ConfigFrom(cfg))
	if err != nil {
		return nil, errors.Join(err, cfg.Close())
	}

	h, err := NewFromConfig(cfg, append([]Option{WithInstrumentation(ins)}, opts...)...)
	if err != nil {
		return nil, errors.Join(err, ins.Shutdown(ctx), cfg.Close())
	}

	h.closers = []func(context.Context) error{
		ins.Shutdown,
		func(context.Context) error { return cfg.Close() },
	}
	return h, nil
}

// Close releases what NewFromFile set up, once. It is a no-op for Hashers
// built any other way.
func (h *Hasher) Close(ctx context.Context) error {
	h.closeOnce.Do(func() {
		h.closeErr = errors.Join(lo.Map(h.closers, func(c func(context.Context) error, _ int) error {
			return c(ctx)
		})...)
	})
	return h.closeErr
}

func (h *Hasher) initInstruments() error {
	ins := h.ins
	if ins == nil {
		ins = instrument.NewNoop()
	}

	h.tracer = ins.Tracer(scopeName)
	meter := ins.Meter(scopeName)

	var err error
	h.deriveDuration, err = meter.Float64Histogram("passhash.derive.duration",
		metric.WithDescription("Time spent in PBKDF2 key derivation."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	h.verifyOutcome, err = meter.Int64Counter("passhash.verify.total",
		metric.WithDescription("Password verifications by outcome."),
	)
	return err
}

// Params returns the effective parameters.
func (h *Hasher) Params() Params {
	return h.params
}

// Hash derives a hash of password. A nil salt means a fresh random salt of
// SaltLength bytes is generated; any non-nil salt, even an empty one, is used
// unchanged. Two calls without a salt yield different salts and hashes.
func (h *Hasher) Hash(ctx context.Context, password, salt []byte) (*Record, error) {
	salt, err := h.resolveSalt(salt)
	if err != nil {
		return nil, err
	}

	key, err := h.derive(ctx, password, salt, h.params.Iterations, h.params.KeyLength)
	if err != nil {
		return nil, err
	}

	return &Record{
		Salt:       salt,
		Hash:       hex.EncodeToString(key),
		Iterations: h.params.Iterations,
	}, nil
}

// HashString hashes a text password. An empty salt means "generate one";
// otherwise the salt text is used as its UTF-8 bytes, without hashing or
// padding.
func (h *Hasher) HashString(ctx context.Context, password, salt string) (*Record, error) {
	var s []byte
	if salt != "" {
		s = []byte(salt)
	}
	return h.Hash(ctx, []byte(password), s)
}

var defaultHasher = sync.OnceValue(func() *Hasher { return MustNew() })

// Default returns the shared Hasher with default parameters.
func Default() *Hasher {
	return defaultHasher()
}

// Hash hashes password with the default Hasher. See Hasher.Hash.
func Hash(ctx context.Context, password, salt []byte) (*Record, error) {
	return Default().Hash(ctx, password, salt)
}

// Compare verifies password with the default Hasher. See Hasher.Compare.
func Compare(ctx context.Context, password, salt, expected []byte) (bool, error) {
	return Default().Compare(ctx, password, salt, expected)
}
