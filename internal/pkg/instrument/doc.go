// Package instrument wires OpenTelemetry tracing, metrics and logs, and
// installs a JSON slog logger that masks secret-bearing fields.
package instrument
