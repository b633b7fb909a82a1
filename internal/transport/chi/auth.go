package chi

import (
	"net/http"
	"strings"
)

// exemptPaths are routes that bypass authentication and rate limiting.
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens.
// If tokens is empty, authentication is disabled (pass-through).
func BearerAuthMiddleware(tokens []string) func(http.Handler) http.Handler {
	validTokens := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if tok != "" {
			validTokens[tok] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		// No tokens configured: auth is disabled
		if len(validTokens) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Exempt paths
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, codeUnauthorized,
					"authorization header must use Bearer scheme")
				return
			}

			token := auth[len(bearerPrefix):]
			if _, ok := validTokens[token]; !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
