package utils

import "github.com/google/uuid"

// SessionCookieName is the client-side identifier cookie. It is deliberately
// readable by client scripts (not HttpOnly) so the UI can offer
// session-scoped "pick up where you left off" without a round trip.
const SessionCookieName = "sessionId"

// SessionCookieMaxAge is one year in seconds.
const SessionCookieMaxAge = 365 * 24 * 60 * 60

// ResolveSession returns the session identifier for a request. An existing
// cookie value is reused verbatim; otherwise a fresh opaque ID is minted and
// issued=true tells the caller to set the cookie. Pure: the cookie write
// itself is the HTTP layer's job, which keeps this testable.
func ResolveSession(cookieValue string) (sessionID string, issued bool) {
	if cookieValue != "" {
		return cookieValue, false
	}
	return uuid.New().String(), true
}
