package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"saathi/pkg/requestcontext"
)

// SessionHeader lets non-browser clients name their session without a cookie.
const SessionHeader = "X-Session-ID"

// SessionIDFromRequest returns the journey session named by the cookie, or by
// the header when the cookie is absent.
func SessionIDFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value)
	}
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}

// RequireSession rejects requests that carry no session and stores the
// session ID in the request context for the rest.
func RequireSession(cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := SessionIDFromRequest(r, cookieName)
			if sessionID == "" {
				ctx := r.Context()
				logger.WarnContext(ctx, "request without session",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, err := w.Write([]byte(`{"error":"bad_request","error_description":"No active session. Start a journey first."}`))
				if err != nil {
					logger.ErrorContext(ctx, "failed to write session error response", "error", err)
				}
				return
			}
			ctx := requestcontext.WithSessionID(r.Context(), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
