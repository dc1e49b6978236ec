package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-attendance-auth/pkg/response"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type HealthHandler struct {
	Checks  map[string]Check
	Timeout time.Duration
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{Checks: checks, Timeout: 2 * time.Second}
}

// Healthz GET /api/healthz
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	status := make(map[string]string, len(h.Checks))
	healthy := true
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}
	if !healthy {
		response.Error[any](c, http.StatusServiceUnavailable, "unhealthy", gin.H{"code": "unhealthy", "checks": status})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"checks": status}, "ok", nil)
}
