package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hongminglow/afriglobal-be/internal/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

const accessLogKey contextKey = "accessLog"

// accessLog collects fields that inner middleware learns after Logging has
// already passed the request on.
type accessLog struct {
	userID string
}

func setAccessLogUser(ctx context.Context, userID string) {
	if entry, ok := ctx.Value(accessLogKey).(*accessLog); ok {
		entry.userID = userID
	}
}

// Logging writes one structured log line per request and counts the status
// code. 5xx responses log at error, 4xx at warn.
func Logging(logger *slog.Logger, recorder metrics.Recorder) func(http.Handler) http.Handler {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			entry := &accessLog{}

			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), accessLogKey, entry)))

			args := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
				slog.String("request_id", GetRequestID(r.Context())),
			}
			if entry.userID != "" {
				args = append(args, slog.String("user_id", entry.userID))
			}

			level := slog.LevelInfo
			switch {
			case rec.statusCode >= 500:
				level = slog.LevelError
			case rec.statusCode >= 400:
				level = slog.LevelWarn
			}

			recorder.RecordHTTPStatus(rec.statusCode)
			logger.Log(r.Context(), level, "http_request", args...)
		})
	}
}
