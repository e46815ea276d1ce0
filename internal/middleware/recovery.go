package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hongminglow/afriglobal-be/internal/http/respond"
)

// Recovery turns a panic into a generic 500.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered", "error", err, "request_id", GetRequestID(r.Context()))
				respond.Error(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
