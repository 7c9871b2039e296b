// Package logger builds the slog loggers used across the module: a JSON stdout
// logger, an optional Sentry fan-out for errors, and a no-op logger for tests.
// Request-scoped values are attached through ContextExtractors on every call.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/blogem/authsession/userctx"
)

// ContextExtractor extracts a slog attribute from context
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// AccountExtractor adds the signed-in account ID when present
func AccountExtractor(ctx context.Context) (slog.Attr, bool) {
	if id := userctx.GetAccountID(ctx); id != "" {
		return slog.String("account_id", id), true
	}
	return slog.Attr{}, false
}

// New creates a JSON logger writing to stdout at level
func New(level slog.Level, extractors ...ContextExtractor) *slog.Logger {
	return NewWithWriter(os.Stdout, level, extractors...)
}

// NewWithWriter creates a JSON logger writing to w
func NewWithWriter(w io.Writer, level slog.Level, extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(newDecorator(h, extractors...))
}

// NewNope creates a logger that discards all output
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// decorator injects extracted context attributes into every record
type decorator struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func newDecorator(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	return &decorator{next: next, extractors: clean}
}

func (h *decorator) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *decorator) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *decorator) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &decorator{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *decorator) WithGroup(name string) slog.Handler {
	return &decorator{next: h.next.WithGroup(name), extractors: h.extractors}
}
