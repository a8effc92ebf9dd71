package authapi

import (
	"context"
	"net/http"
	"strings"

	"taskd/cmd/internal/auth/token"
)

type identityCtxKey struct{}

// WithIdentity guards a protected handler with bearer-token authentication.
//
// Status contract (observed API behavior, preserved deliberately):
//   - no Authorization header at all -> 401
//   - header present but token invalid -> 403
//
// A malformed header (no second whitespace-delimited segment) degrades to an
// empty credential, which fails verification and lands in the 403 branch.
func WithIdentity(next http.Handler, tokens *token.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		if raw == "" {
			writeMessage(w, http.StatusUnauthorized, "Token is required")
			return
		}

		// Only the second whitespace-delimited segment is used; the scheme
		// value itself is ignored.
		var credential string
		if parts := strings.Fields(raw); len(parts) >= 2 {
			credential = parts[1]
		}

		claims, err := tokens.Verify(credential)
		if err != nil {
			writeMessage(w, http.StatusForbidden, "Forbidden")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), claims)))
	})
}

// ContextWithIdentity binds verified claims to a request context.
func ContextWithIdentity(ctx context.Context, claims token.Claims) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, claims)
}

// IdentityFrom returns the authenticated identity bound by WithIdentity.
func IdentityFrom(ctx context.Context) (token.Claims, bool) {
	claims, ok := ctx.Value(identityCtxKey{}).(token.Claims)
	return claims, ok
}
