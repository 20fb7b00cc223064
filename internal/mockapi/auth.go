package mockapi

import (
	"net/http"
	"strings"
)

// readToken accepts "Token x", "Bearer x" or an X-API-Key header.
func readToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, rest, ok := strings.Cut(h, " "); ok {
		switch strings.ToLower(scheme) {
		case "token", "bearer":
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

// RequireToken rejects requests without one of the given tokens.
// With no tokens configured every request is allowed.
func RequireToken(tokens []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t != "" {
			allowed[t] = struct{}{}
		}
	}
	return func(next http.Handler) http.Handler {
		if len(allowed) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[readToken(r)]; ok {
				next.ServeHTTP(w, r)
				return
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Invalid token.",
			})
		})
	}
}
