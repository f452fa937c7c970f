package middleware

import (
	"net/http"
	"strings"

	"priestbook/backend/internal/authctx"

	"firebase.google.com/go/v4/auth"
)

// WithAuth verifies the Firebase ID token on every request and stores the
// caller's uid and claims in the request context.
func WithAuth(authClient *auth.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
				http.Error(w, "missing Authorization: Bearer <token>", http.StatusUnauthorized)
				return
			}
			idToken := strings.TrimSpace(h[len("Bearer "):])

			tok, err := authClient.VerifyIDToken(r.Context(), idToken)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := authctx.WithUID(r.Context(), tok.UID)
			ctx = authctx.WithClaims(ctx, tok.Claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
