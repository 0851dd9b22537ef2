package middleware

import (
	"net/http"

	"github.com/demowall/backend/internal/auth/service"
)

// RequireAdmin validates the bearer token and rejects callers without the
// admin role. Missing or invalid tokens get 401; valid non-admin tokens get 403.
func RequireAdmin(tokenGenerator *service.TokenGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := identityFromRequest(r, tokenGenerator)
			if identity == nil {
				respondError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if !identity.IsAdmin() {
				respondError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}
