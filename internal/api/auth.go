package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/FocuswithJustin/JuniperLectionary/internal/logging"
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Enabled bool
	APIKey  string
}

// Validate rejects an enabled configuration without a usable key.
func (c AuthConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.APIKey) < 16 {
		return fmt.Errorf("API key must be at least 16 characters (got %d)", len(c.APIKey))
	}
	return nil
}

// AuthMiddleware requires the X-API-Key header when auth is enabled. The
// websocket endpoint may pass the key as the api_key query parameter, since
// browsers cannot set headers on an upgrade. /health is always public.
func AuthMiddleware(cfg AuthConfig, next http.Handler) http.Handler {
	if !cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get("X-API-Key")
		if key == "" && r.URL.Path == "/ws" {
			key = r.URL.Query().Get("api_key")
		}

		switch {
		case key == "":
			logging.WarnContext(r.Context(), "unauthorized_request", "path", r.URL.Path, "reason", "missing API key")
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing X-API-Key header")
		case subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIKey)) != 1:
			logging.WarnContext(r.Context(), "unauthorized_request", "path", r.URL.Path, "reason", "invalid API key")
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid API key")
		default:
			next.ServeHTTP(w, r)
		}
	})
}
