// Package identity resolves the caller behind a request against the
// external auth provider's session table. The provider itself (sign-in,
// token issuance) is out of scope; this is a read-only lookup.
package identity

import (
	"context"
	"log"
	"net/http"
	"strings"
)

// SessionSource resolves a session token to a user ID.
type SessionSource interface {
	UserIDForToken(ctx context.Context, token string) (string, error)
}

// cookieName matches the session cookie the auth provider sets.
const cookieName = "session_token"

type Resolver struct {
	Sessions SessionSource
}

// FromRequest returns the caller's user ID, or "" when the request
// carries no valid session. Lookup failures degrade to anonymous: an
// unauthenticated simulation is still a valid simulation.
func (r *Resolver) FromRequest(req *http.Request) string {
	if r == nil || r.Sessions == nil {
		return ""
	}
	token := tokenFromRequest(req)
	if token == "" {
		return ""
	}
	userID, err := r.Sessions.UserIDForToken(req.Context(), token)
	if err != nil {
		log.Printf("session lookup failed: %v", err)
		return ""
	}
	return userID
}

func tokenFromRequest(req *http.Request) string {
	if auth := strings.TrimSpace(req.Header.Get("Authorization")); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := req.Cookie(cookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}
