package testutil

import "net/http"

// SessionCookieName matches the cookie set by POST /journey/start.
const SessionCookieName = "saathi_session"

// WithSessionCookie attaches the journey session cookie, as a browser would.
func WithSessionCookie(req *http.Request, sessionID string) *http.Request {
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
	return req
}

// WithSessionHeader names the session through the header used by API clients.
func WithSessionHeader(req *http.Request, sessionID string) *http.Request {
	req.Header.Set("X-Session-ID", sessionID)
	return req
}
