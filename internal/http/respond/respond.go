package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes payload as the response body with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("respond: encode payload failed", "error", err)
	}
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}
