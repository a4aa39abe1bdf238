// Package logx contains logging helpers for the request id and
// the outbound HTTP client.
package logx

import (
	"context"

	"golang.org/x/exp/slog"
)

type requestIDKey struct{}

// ContextWithRequestID returns a new context with the given request ID.
func ContextWithRequestID(parent context.Context, reqID string) context.Context {
	return context.WithValue(parent, requestIDKey{}, reqID)
}

// RequestIDFromContext returns request id from context.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey{}).(string)
	return v, ok
}

// RequestIDHandler is a slog handler that stamps every record with the
// request id from the context, if it's present.
type RequestIDHandler struct {
	slog.Handler
}

// Handle implements slog.Handler interface.
func (h RequestIDHandler) Handle(ctx context.Context, rec slog.Record) error {
	if reqID, ok := RequestIDFromContext(ctx); ok {
		rec.AddAttrs(slog.String("request_id", reqID))
	}
	return h.Handler.Handle(ctx, rec)
}

// WithGroup returns a new RequestIDHandler with the given group.
func (h RequestIDHandler) WithGroup(group string) slog.Handler {
	return RequestIDHandler{Handler: h.Handler.WithGroup(group)}
}

// WithAttrs returns a new RequestIDHandler with the given attributes.
func (h RequestIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return RequestIDHandler{Handler: h.Handler.WithAttrs(attrs)}
}
