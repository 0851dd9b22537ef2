// Package middleware provides token-based authentication middleware
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/demowall/backend/internal/auth/service"
)

type contextKey string

const identityKey contextKey = "identity"

// Auth validates the bearer token and attaches the caller's identity to
// the request context. Requests without a valid token get 401.
func Auth(tokenGenerator *service.TokenGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := identityFromRequest(r, tokenGenerator)
			if identity == nil {
				respondError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and lets the request through either way. Used on public catalog routes where
// owners and admins may see more than anonymous callers.
func OptionalAuth(tokenGenerator *service.TokenGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity := identityFromRequest(r, tokenGenerator); identity != nil {
				r = r.WithContext(withIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// identityFromRequest extracts and validates the token from the Authorization
// header (cookie fallback) and returns nil when no valid identity exists
func identityFromRequest(r *http.Request, tokenGenerator *service.TokenGenerator) *service.Identity {
	var token string

	// Try Authorization header first, expected format: "Bearer <token>"
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			token = parts[1]
		}
	}

	// If not in header, try cookie
	if token == "" {
		if cookie, err := r.Cookie("token"); err == nil {
			token = cookie.Value
		}
	}

	if token == "" {
		return nil
	}

	identity, err := tokenGenerator.Validate(token)
	if err != nil {
		return nil
	}
	return identity
}

func withIdentity(ctx context.Context, identity *service.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the authenticated identity from context
func GetIdentity(ctx context.Context) (*service.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*service.Identity)
	return identity, ok
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
