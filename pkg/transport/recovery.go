package transport

import (
	"log/slog"
	"net/http"

	"github.com/listd/listd/pkg/api"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to generic 500 responses. The server continues to accept
// new requests after a panic is recovered.
func Recovery(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("request_id", RequestIDFromContext(r.Context())))
					WriteAPIError(w, api.NewServerError("Internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
