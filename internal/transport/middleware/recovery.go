package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/adeputra/pharmacy-inventory/internal"
)

// RecoveryMiddleware converts panics into the standard internal-error
// envelope instead of tearing down the connection.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"response_header": map[string]any{
							"code":    internal.CodeInternal,
							"success": false,
							"message": "internal server error",
							"error":   []string{},
						},
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
