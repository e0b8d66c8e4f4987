package instrument

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const maskedValue = "***"

func initLogging(w io.Writer, serviceName string, lp *sdklog.LoggerProvider, maskFields []string) {
	slog.SetDefault(NewLogger(w, serviceName, lp, maskFields))
}

// NewLogger builds the JSON logger used across the module. Attributes whose
// key matches DefaultMaskFields or maskFields (case-insensitive, at any group
// depth) are replaced with "***". When lp is non-nil records are also sent to
// the OTel log pipeline.
func NewLogger(w io.Writer, serviceName string, lp *sdklog.LoggerProvider, maskFields []string) *slog.Logger {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		AddSource:   true,
		ReplaceAttr: replaceAttr,
	})

	var handler slog.Handler = jsonHandler
	if lp != nil {
		handler = &multiHandler{handlers: []slog.Handler{
			jsonHandler,
			otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(lp)),
		}}
	}

	return slog.New(&serviceHandler{
		Handler:     &maskHandler{handler: handler, maskKeys: buildMaskKeys(slices.Concat(DefaultMaskFields, maskFields))},
		serviceName: serviceName,
	})
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		return slog.String("file", fmt.Sprintf("%s:%d", shortPath(src.File), src.Line))
	}
	return a
}

// shortPath keeps the path from the module's internal/ directory, or the last
// two elements otherwise.
func shortPath(file string) string {
	if _, after, found := strings.Cut(file, "/internal/"); found {
		return filepath.Join("internal", after)
	}
	return filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file))
}

type serviceHandler struct {
	slog.Handler
	serviceName string
}

func (h *serviceHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(slog.String("service", h.serviceName))
	return h.Handler.Handle(ctx, r)
}

func (h *serviceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &serviceHandler{Handler: h.Handler.WithAttrs(attrs), serviceName: h.serviceName}
}

func (h *serviceHandler) WithGroup(name string) slog.Handler {
	return &serviceHandler{Handler: h.Handler.WithGroup(name), serviceName: h.serviceName}
}

type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return lo.SomeBy(m.handlers, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, handler := range m.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &multiHandler{handlers: lo.Map(m.handlers, func(h slog.Handler, _ int) slog.Handler {
		return h.WithAttrs(attrs)
	})}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	return &multiHandler{handlers: lo.Map(m.handlers, func(h slog.Handler, _ int) slog.Handler {
		return h.WithGroup(name)
	})}
}

type maskHandler struct {
	handler  slog.Handler
	maskKeys map[string]struct{}
}

func (h *maskHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *maskHandler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(maskAttr(attr, h.maskKeys))
		return true
	})

	return h.handler.Handle(ctx, masked)
}

func (h *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &maskHandler{
		handler: h.handler.WithAttrs(lo.Map(attrs, func(a slog.Attr, _ int) slog.Attr {
			return maskAttr(a, h.maskKeys)
		})),
		maskKeys: h.maskKeys,
	}
}

func (h *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{handler: h.handler.WithGroup(name), maskKeys: h.maskKeys}
}

func buildMaskKeys(fields []string) map[string]struct{} {
	keys := lo.FilterMap(fields, func(f string, _ int) (string, bool) {
		f = strings.ToLower(strings.TrimSpace(f))
		return f, f != ""
	})
	return lo.SliceToMap(keys, func(k string) (string, struct{}) { return k, struct{}{} })
}

func maskAttr(attr slog.Attr, maskKeys map[string]struct{}) slog.Attr {
	if _, found := maskKeys[strings.ToLower(attr.Key)]; found {
		return slog.String(attr.Key, maskedValue)
	}

	switch attr.Value.Kind() {
	case slog.KindGroup:
		attr.Value = slog.GroupValue(lo.Map(attr.Value.Group(), func(ga slog.Attr, _ int) slog.Attr {
			return maskAttr(ga, maskKeys)
		})...)
	case slog.KindAny:
		switch v := attr.Value.Any().(type) {
		case map[string]any:
			attr.Value = slog.AnyValue(maskMap(v, maskKeys))
		case map[string]string:
			attr.Value = slog.AnyValue(maskMap(lo.MapValues(v, func(s string, _ string) any { return s }), maskKeys))
		}
	}

	return attr
}

func maskMap(m map[string]any, maskKeys map[string]struct{}) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if _, found := maskKeys[strings.ToLower(k)]; found {
			out[k] = maskedValue
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = maskMap(nested, maskKeys)
			continue
		}
		out[k] = v
	}
	return out
}
