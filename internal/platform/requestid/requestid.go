// Package requestid carries the per-request correlation ID through contexts,
// logs and outgoing calls.
package requestid

import (
	"context"
	"log/slog"
	"net/http"
)

// Header carries the request ID in both directions.
const Header = "X-Request-ID"

type ctxKey struct{}

// NewContext returns a context that carries the given request ID.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID stored in ctx, or an empty string.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Attr returns the request ID as a log attribute. It is empty, and dropped by
// slog, when ctx carries no ID.
func Attr(ctx context.Context) slog.Attr {
	id := FromContext(ctx)
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Propagate copies the request ID of req's context onto its headers.
func Propagate(req *http.Request) {
	if id := FromContext(req.Context()); id != "" && req.Header.Get(Header) == "" {
		req.Header.Set(Header, id)
	}
}
