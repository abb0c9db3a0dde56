package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// WithOpID attaches an operation correlation ID to the context logger so all
// log lines from one sweep or login attempt can be tied together.
func WithOpID(ctx context.Context, opID string) context.Context {
	l := FromContext(ctx)
	return WithContext(ctx, l.With("op_id", opID))
}
