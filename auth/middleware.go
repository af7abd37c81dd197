package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ashishkumar256/sunspot/observe"
)

// DefaultPrefix is the path prefix that requires a key.
const DefaultPrefix = "/api/"

// MiddlewareConfig configures the HTTP gate.
type MiddlewareConfig struct {
	// Prefix selects the guarded paths. Default: "/api/"
	Prefix string

	// Logger receives rejected and failed attempts. Default: no-op
	Logger observe.Logger
}

// Middleware returns an HTTP middleware enforcing API keys on paths under
// the configured prefix. Other paths pass through untouched.
//
// Missing keys get 401, unknown or expired keys get 403 and store failures
// get 500, each with a JSON body {"detail": "..."}.
func Middleware(authn *APIKeyAuthenticator, cfg MiddlewareConfig) func(http.Handler) http.Handler {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	logger := cfg.Logger.WithOperation(observe.Operation{Component: "auth", Name: "api_key"})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, cfg.Prefix) {
				next.ServeHTTP(w, r)
				return
			}

			id, err := authn.Authenticate(r.Context(), r.Header.Get(authn.Header()))
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
			case errors.Is(err, ErrMissingKey):
				writeDetail(w, http.StatusUnauthorized, "Missing API key")
			case errors.Is(err, ErrInvalidKey), errors.Is(err, ErrKeyExpired):
				logger.Warn(r.Context(), "rejected API key",
					observe.Field{Key: "path", Value: r.URL.Path},
					observe.Field{Key: "reason", Value: err.Error()},
				)
				writeDetail(w, http.StatusForbidden, "Invalid API key")
			default:
				logger.Error(r.Context(), "API key lookup failed",
					observe.Field{Key: "error", Value: err.Error()},
				)
				writeDetail(w, http.StatusInternalServerError, "Authentication error")
			}
		})
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
