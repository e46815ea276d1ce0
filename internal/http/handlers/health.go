package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/afriglobal-be/internal/http/respond"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns uptime and database status.
type HealthHandler struct {
	startedAt time.Time
	db        Pinger
	version   string
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, db Pinger, version string) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, db: db, version: version}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, database, code := "ok", "up", http.StatusOK
	if h.db == nil || h.db.Ping(ctx) != nil {
		status, database, code = "degraded", "down", http.StatusServiceUnavailable
	}

	respond.JSON(w, code, map[string]string{
		"status":   status,
		"database": database,
		"version":  h.version,
		"uptime":   time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
