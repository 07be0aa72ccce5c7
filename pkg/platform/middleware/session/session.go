package session

import (
	"context"
	"net/http"
	"strings"

	"atelier/internal/auth/models"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/platform/httputil"
)

// Validator validates a session token and returns the caller's identity.
type Validator interface {
	Validate(tokenString string) (*models.Identity, error)
}

type identityKey struct{}

// TokenFromRequest extracts the session token, preferring the cookie the
// login handler sets and falling back to a bearer Authorization header for
// non-browser clients.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// Middleware rejects requests without a valid session token and stores the
// identity in the request context.
func Middleware(validator Validator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := validator.Validate(TokenFromRequest(r, cookieName))
			if err != nil {
				httputil.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin guards admin-only routes. It must run after Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := Identity(r.Context())
		if !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials"))
			return
		}
		if !identity.IsAdmin() {
			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Identity returns the authenticated caller stored by Middleware.
func Identity(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*models.Identity)
	return identity, ok
}
