package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/faceforge/faceforge/internal/auth"
)

// AdminKeyHeader carries the admin key on destructive endpoints.
const AdminKeyHeader = "X-Admin-Key"

// minVerifyDuration is the minimum time to spend on verification to
// prevent timing attacks.
const minVerifyDuration = 200 * time.Millisecond

// AdminConfig holds configuration for the admin auth middleware.
type AdminConfig struct {
	Logger *slog.Logger
	// KeyHash is the Argon2id PHC hash of the admin key. Empty means no
	// admin key is configured and every request is rejected.
	KeyHash string
}

// Admin returns middleware that guards destructive endpoints behind the
// configured admin key.
func Admin(cfg AdminConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minVerifyDuration {
					time.Sleep(minVerifyDuration - elapsed)
				}
			}()

			key := r.Header.Get(AdminKeyHeader)
			if key == "" || cfg.KeyHash == "" {
				cfg.Logger.Warn("admin authentication failed",
					slog.String("reason", "missing_key"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAdminError(w)
				return
			}

			ok, err := auth.VerifyKey(key, cfg.KeyHash)
			if err != nil {
				cfg.Logger.Error("admin key hash unusable",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAdminError(w)
				return
			}
			if !ok {
				cfg.Logger.Warn("admin authentication failed",
					slog.String("reason", "invalid_key"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAdminError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeAdminError writes a 401 Unauthorized response.
// Uses the same message for all failures to prevent enumeration.
func writeAdminError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing admin key"}}`))
}
