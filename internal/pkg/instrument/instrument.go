package instrument

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/shandysiswandi/passhash/internal/pkg/config"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	// DefaultServiceName is used when Config.ServiceName is empty.
	DefaultServiceName = "passhash"
	// DefaultOTLPEndpoint is the collector address used when none is configured.
	DefaultOTLPEndpoint = "localhost:4317"
	// DefaultMetricsInterval is the export interval used when none is configured.
	DefaultMetricsInterval = 30 * time.Second
)

// DefaultMaskFields are always masked in log output.
var DefaultMaskFields = []string{"password", "salt", "hash", "expected"}

// Instrumentation exposes tracing and metrics providers for dependency injection.
type Instrumentation interface {
	Tracer(name string) trace.Tracer
	Meter(name string) metric.Meter
	Shutdown(ctx context.Context) error
}

// Config drives OpenTelemetry initialization.
type Config struct {
	// Enabled toggles OpenTelemetry initialization.
	Enabled bool
	// ServiceName is the service.name resource attribute.
	ServiceName string
	// ServiceVersion is the service.version resource attribute.
	ServiceVersion string
	// Environment is the deployment environment name.
	Environment string
	// OTLPEndpoint is the OTLP gRPC collector endpoint.
	OTLPEndpoint string
	// OTLPSecure controls TLS usage for OTLP exporters.
	OTLPSecure bool
	// TraceSampleRatio controls trace sampling probability, clamped to [0, 1].
	TraceSampleRatio float64
	// MetricsInterval configures the metrics export interval.
	MetricsInterval time.Duration
	// LogExport also ships slog records over OTLP. Off by default; the hasher
	// core does not log, only config reloads and batch panics do.
	LogExport bool
	// MaskFields lists log field names masked in addition to DefaultMaskFields.
	MaskFields []string
}

// ConfigFrom reads the instrument.* keys.
func ConfigFrom(cfg config.Config) *Config {
	return &Config{
		Enabled:          cfg.GetBool("instrument.enabled"),
		ServiceName:      cfg.GetString("instrument.service_name"),
		ServiceVersion:   cfg.GetString("instrument.service_version"),
		Environment:      cfg.GetString("instrument.env"),
		OTLPEndpoint:     cfg.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       cfg.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: cfg.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  cfg.GetSecond("instrument.metric_interval_seconds"),
		LogExport:        cfg.GetBool("instrument.log_export"),
		MaskFields:       cfg.GetArray("instrument.log_mask_fields"),
	}
}

func (c *Config) withDefaults() Config {
	var out Config
	if c != nil {
		out = *c
	}
	if out.ServiceName == "" {
		out.ServiceName = DefaultServiceName
	}
	if out.OTLPEndpoint == "" {
		out.OTLPEndpoint = DefaultOTLPEndpoint
	}
	if out.MetricsInterval <= 0 {
		out.MetricsInterval = DefaultMetricsInterval
	}
	out.TraceSampleRatio = min(max(out.TraceSampleRatio, 0), 1)
	return out
}

type otelInstrumentation struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	loggerProvider *sdklog.LoggerProvider
}

// New builds an OTLP-exporting implementation, or a noop one when cfg is nil
// or disabled. In both cases the default slog logger is replaced with a
// masking JSON logger on stdout.
func New(ctx context.Context, cfg *Config) (Instrumentation, error) {
	c := cfg.withDefaults()
	if !c.Enabled {
		initLogging(os.Stdout, c.ServiceName, nil, c.MaskFields)
		return NewNoop(), nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(c.ServiceName),
			semconv.ServiceVersion(c.ServiceVersion),
			semconv.DeploymentEnvironment(c.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	o := &otelInstrumentation{}
	if o.tracerProvider, err = newTracerProvider(ctx, c, res); err != nil {
		return nil, err
	}
	if o.meterProvider, err = newMeterProvider(ctx, c, res); err != nil {
		return nil, errors.Join(err, o.Shutdown(ctx))
	}
	if c.LogExport {
		if o.loggerProvider, err = newLoggerProvider(ctx, c, res); err != nil {
			return nil, errors.Join(err, o.Shutdown(ctx))
		}
	}

	initLogging(os.Stdout, c.ServiceName, o.loggerProvider, c.MaskFields)

	return o, nil
}

func newTracerProvider(ctx context.Context, c Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(c.OTLPEndpoint)}
	if !c.OTLPSecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.TraceSampleRatio))),
		sdktrace.WithBatcher(exp),
	), nil
}

func newMeterProvider(ctx context.Context, c Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(c.OTLPEndpoint)}
	if !c.OTLPSecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(c.MetricsInterval))),
	), nil
}

func newLoggerProvider(ctx context.Context, c Config, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(c.OTLPEndpoint)}
	if !c.OTLPSecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}

	exp, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)),
	), nil
}

// Tracer returns a tracer for the given name.
func (o *otelInstrumentation) Tracer(name string) trace.Tracer {
	return o.tracerProvider.Tracer(name)
}

// Meter returns a meter for the given name.
func (o *otelInstrumentation) Meter(name string) metric.Meter {
	return o.meterProvider.Meter(name)
}

// Shutdown flushes and stops whichever providers were started.
func (o *otelInstrumentation) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracerProvider != nil {
		errs = append(errs, o.tracerProvider.Shutdown(ctx))
	}
	if o.meterProvider != nil {
		errs = append(errs, o.meterProvider.Shutdown(ctx))
	}
	if o.loggerProvider != nil {
		errs = append(errs, o.loggerProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// NewNoop returns a no-op implementation suitable for unit tests.
func NewNoop() Instrumentation {
	return &providers{
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
}

// NewWithProviders wraps caller-owned providers, e.g. an SDK meter provider
// with a manual reader in tests. Shutdown does not stop them.
func NewWithProviders(tp trace.TracerProvider, mp metric.MeterProvider) Instrumentation {
	return &providers{tracerProvider: tp, meterProvider: mp}
}

type providers struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

func (p *providers) Tracer(name string) trace.Tracer {
	return p.tracerProvider.Tracer(name)
}

func (p *providers) Meter(name string) metric.Meter {
	return p.meterProvider.Meter(name)
}

func (p *providers) Shutdown(context.Context) error {
	return nil
}
