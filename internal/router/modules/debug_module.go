package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-attendance-auth/internal/interface/http"
	"github.com/oksasatya/go-attendance-auth/internal/interface/middleware"
)

// HealthModule: GET /healthz under /api
type HealthModule struct {
	Handler *handlers.HealthHandler
}

func NewHealthModule(h *handlers.HealthHandler) *HealthModule { return &HealthModule{Handler: h} }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", m.Handler.Healthz)
}

// DebugModule exposes Prometheus metrics at the engine root, private networks only.
type DebugModule struct {
	Metrics http.Handler
}

func NewDebugModule(h http.Handler) *DebugModule { return &DebugModule{Metrics: h} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	if m.Metrics == nil {
		return
	}
	rg.GET("/metrics", middleware.PrivateOnly(), gin.WrapH(m.Metrics))
}
