package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/waymark-io/waymark/internal/service"
)

type contextKeyAuth string

// KeyInfoKey is the context key for the verified API key's owner info.
const KeyInfoKey contextKeyAuth = "key_info"

// RequireAPIKey returns an HTTP middleware that gates history endpoints on
// the X-Api-Key header. A missing header yields 401; a key that does not
// verify (unknown, revoked, or expired) yields 403. A store failure is not
// a rejection and yields 500. On success the key's owner info is attached
// to the request context.
func RequireAPIKey(authSvc *service.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawKey := r.Header.Get("X-Api-Key")
			if rawKey == "" {
				writeAuthError(w, http.StatusUnauthorized, "API key required")
				return
			}

			info, err := authSvc.Verify(r.Context(), rawKey)
			if errors.Is(err, service.ErrInvalidKey) {
				writeAuthError(w, http.StatusForbidden, "Invalid API key")
				return
			}
			if err != nil {
				logger.Error("api key verification failed", "error", err)
				writeAuthError(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}

			ctx := context.WithValue(r.Context(), KeyInfoKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns an HTTP middleware for the admin endpoints. When no
// admin secret is configured it passes requests through untouched, on the
// assumption that a reverse proxy in front applies basic auth. When a
// secret is set, a valid Bearer token is required.
func RequireAdmin(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authSvc.AdminAuthEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "Admin token required")
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if err := authSvc.ValidateAdminToken(token); err != nil {
				writeAuthError(w, http.StatusForbidden, "Invalid admin token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetKeyInfo extracts the verified key's owner info from the context.
// Returns nil for unauthenticated requests.
func GetKeyInfo(ctx context.Context) *service.KeyInfo {
	if info, ok := ctx.Value(KeyInfoKey).(*service.KeyInfo); ok {
		return info
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Manually construct JSON to avoid an import cycle with handler
	w.Write([]byte(`{"error":{"code":` + strconv.Itoa(status) + `,"message":"` + message + `"}}`))
}
