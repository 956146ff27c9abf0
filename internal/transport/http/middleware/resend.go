package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/go-onboard-api/internal/infrastructure/jwt"
)

type contextKey string

const resendEmailKey contextKey = "resend-email"

// ResendAuth validates the Bearer resend token issued alongside an OTP and
// injects its email claim into the request context. It is what lets the
// resend endpoint skip the captcha without being open to anonymous traffic.
func ResendAuth(provider *jwtinfra.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			claims, err := provider.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired resend token")
				return
			}
			ctx := context.WithValue(r.Context(), resendEmailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResendEmailFromContext extracts the verified resend email from the context.
func ResendEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(resendEmailKey).(string)
	return email, ok
}
