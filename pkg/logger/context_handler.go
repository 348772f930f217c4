package logger

import (
	"context"
	"log/slog"
)

// contextValue maps a context key to the attribute name it is logged under.
type contextValue struct {
	name string
	key  any
}

// contextHandler adds the configured context values to every record handled
// with a context that carries them. Empty strings are skipped.
type contextHandler struct {
	next   slog.Handler
	values []contextValue
}

func newContextHandler(next slog.Handler, values []contextValue) slog.Handler {
	if len(values) == 0 {
		return next
	}
	return &contextHandler{next: next, values: values}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, cv := range h.values {
		switch v := ctx.Value(cv.key).(type) {
		case nil:
		case string:
			if v != "" {
				rec.AddAttrs(slog.String(cv.name, v))
			}
		default:
			rec.AddAttrs(slog.Any(cv.name, v))
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), values: h.values}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), values: h.values}
}
