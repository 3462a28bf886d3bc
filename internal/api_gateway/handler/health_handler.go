package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the health check probes
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness of the API and its stores
type HealthHandler struct {
	checks  map[string]Pinger
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthHandler probes each named dependency on every request. Nil pingers are skipped.
func NewHealthHandler(logger *slog.Logger, timeout time.Duration, checks map[string]Pinger) *HealthHandler {
	active := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			active[name] = p
		}
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthHandler{checks: active, timeout: timeout, logger: logger}
}

// Health answers 200 when every dependency responds and 503 otherwise
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", "dependency", name, "error", err)
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "dependencies": deps, "timestamp": time.Now().UTC()})
}
