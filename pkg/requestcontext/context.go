// Package requestcontext carries per-request values from HTTP middleware to
// services that never see the *http.Request: the journey session ID, client
// metadata for audit events, the chi request ID and a pinned request clock.
//
// Tests set values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixed)
//	ctx = requestcontext.WithSessionID(ctx, "sess-1")
package requestcontext

import (
	"context"
	"time"
)

type key int

const (
	sessionIDKey key = iota
	clientIPKey
	userAgentKey
	requestIDKey
	requestTimeKey
)

func value[T any](ctx context.Context, k key) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}

func str(ctx context.Context, k key) string {
	s, _ := value[string](ctx, k)
	return s
}

// SessionID is the journey session resolved from the cookie or X-Session-ID header.
func SessionID(ctx context.Context) string { return str(ctx, sessionIDKey) }

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func ClientIP(ctx context.Context) string  { return str(ctx, clientIPKey) }
func UserAgent(ctx context.Context) string { return str(ctx, userAgentKey) }

// WithClientMetadata records who is on the other end of the request.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey, clientIP)
	return context.WithValue(ctx, userAgentKey, userAgent)
}

func RequestID(ctx context.Context) string { return str(ctx, requestIDKey) }

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now is the request's pinned clock, or time.Now outside a request.
// Session timestamps read it so one request stamps a single instant.
func Now(ctx context.Context) time.Time {
	if t, ok := value[time.Time](ctx, requestTimeKey); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}

// LogAttrs returns the request and session identifiers as slog key/value
// pairs, skipping any that are unset.
func LogAttrs(ctx context.Context) []any {
	var attrs []any
	if id := RequestID(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	if id := SessionID(ctx); id != "" {
		attrs = append(attrs, "session_id", id)
	}
	return attrs
}
