// Package middleware provides the HTTP middleware chain for documite.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"documite/internal/auth"
	"documite/internal/jwtauth"
)

// TokenVerifier checks a bearer token and returns its verified claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*jwtauth.Claims, error)
}

// RequireAuth returns middleware that only lets requests with a valid bearer token through.
//
// Authentication flow:
//  1. Extract the bearer token from the Authorization header
//  2. Verify signature, expiry, issuer and audience
//  3. Attach the claims to the request context
//
// Any failure is answered with 401; the reason is only logged.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractBearerToken(r)
			if err != nil {
				logger.DebugContext(r.Context(), "rejected request without bearer token",
					"path", r.URL.Path,
					"reason", err,
				)
				auth.WriteUnauthorized(w)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.InfoContext(r.Context(), "rejected invalid bearer token",
					"path", r.URL.Path,
					"request_id", RequestIDFromContext(r.Context()),
					"reason", err,
				)
				auth.WriteUnauthorized(w)
				return
			}

			ctx := jwtauth.WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
