package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/listd/listd/pkg/api"
	"github.com/listd/listd/pkg/debug"
	"github.com/listd/listd/pkg/observability"
)

// Middleware creates HTTP middleware from an authenticator chain.
// It checks the bypass list, runs authentication, and injects the caller
// identity into the request context.
//
// Failures collapse onto two generic bodies: "Unauthorized" when no
// credential was presented at all, "Invalid token" when one was presented
// and rejected. Neither reveals which verification step failed.
func Middleware(chain *Chain, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check bypass list.
			if bypass[r.URL.Path] {
				debug.Log("auth", "bypassing authentication", "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			result := chain.Authenticate(r.Context(), r)

			if result.Decision != Yes {
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", result.Err,
				)

				message := "Invalid token"
				reason := "invalid_token"
				if errors.Is(result.Err, ErrUnauthenticated) {
					message = "Unauthorized"
					reason = "missing_credential"
				}
				observability.AuthFailuresTotal.WithLabelValues(reason).Inc()
				debug.Log("auth", "request rejected", "path", r.URL.Path, "reason", reason)
				writeUnauthorized(w, message)
				return
			}

			if result.Identity == nil || result.Identity.Subject == "" {
				slog.Error("authenticator returned empty identity")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(api.ErrorResponse{Error: "Internal error"})
				return
			}

			slog.Debug("authentication succeeded",
				"subject", result.Identity.Subject,
				"path", r.URL.Path,
			)

			// Identity is request-scoped: it lives only in this request's
			// context and is never cached across requests.
			ctx := SetIdentity(r.Context(), result.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: message})
}

// DefaultBypassEndpoints lists endpoints that skip authentication.
var DefaultBypassEndpoints = []string{
	"/auth/register",
	"/auth/login",
	"/healthz",
	"/readyz",
	"/metrics",
}
