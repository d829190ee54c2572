package handler

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"
)

const readinessTimeout = 5 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RedisPinger wraps a Redis PING, e.g. client.Ping(ctx).Err().
type RedisPinger func(ctx context.Context) error

type HealthHandler struct {
	db        Pinger
	redis     RedisPinger
	logger    *slog.Logger
	startTime time.Time
	version   string
}

func NewHealthHandler(db Pinger, redis RedisPinger, logger *slog.Logger) *HealthHandler {
	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "unknown"
	}
	return &HealthHandler{
		db:        db,
		redis:     redis,
		logger:    logger,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse follows Kubernetes/OpenShift health check conventions
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Version   string           `json:"version,omitempty"`
	Checks    map[string]Check `json:"checks"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health is a simple liveness check - just confirms the Go process is running
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    map[string]Check{"process": {Status: "UP"}},
	})
}

// Live is an alias for Health
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.Health(w, r)
}

// Ready checks the database and Redis (readiness probe).
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var pingDB func(context.Context) error
	if h.db != nil {
		pingDB = h.db.PingContext
	}
	checks := map[string]Check{
		"database": h.check(ctx, "database", pingDB),
		"redis":    h.check(ctx, "redis", h.redis),
	}

	status, httpStatus := "UP", http.StatusOK
	for _, c := range checks {
		if c.Status != "UP" {
			status, httpStatus = "DOWN", http.StatusServiceUnavailable
		}
	}
	writeJSON(w, httpStatus, HealthResponse{Status: status, Checks: checks})
}

func (h *HealthHandler) check(ctx context.Context, name string, ping func(context.Context) error) Check {
	if ping == nil {
		return Check{Status: "DOWN", Message: name + " is not initialized"}
	}
	if err := ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "readiness check failed", "dependency", name, "error", err)
		return Check{Status: "DOWN", Message: "cannot connect to " + name}
	}
	return Check{Status: "UP"}
}
