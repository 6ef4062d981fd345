// Package observability wires logging, tracing and metrics for the app.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// NoOpLogger discards everything. Used by tests and as a safe default.
var NoOpLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// NewLogger builds the process logger. JSON in anything that isn't local dev,
// text otherwise, so container logs stay machine-parseable.
func NewLogger(environment string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if environment == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(slog.String("service", "pelada-bot"), slog.String("env", environment))
}
