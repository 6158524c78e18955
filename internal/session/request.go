package session

import (
	"net/http"
	"strings"
)

// FromRequest extracts the bearer token from the Authorization header
// ("Bearer <token>" or a raw token) and falls back to the access_token cookie.
func FromRequest(r *http.Request) (Static, bool) {
	if token := extractBearer(r); token != "" {
		return Static(token), true
	}
	if c, err := r.Cookie(TokenKey); err == nil && c.Value != "" {
		return Static(c.Value), true
	}
	return "", false
}

func extractBearer(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return ""
	}
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return auth
}
