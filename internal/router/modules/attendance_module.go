package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-attendance-auth/internal/interface/http"
	"github.com/oksasatya/go-attendance-auth/internal/interface/middleware"
)

// AttendanceModule: POST /attendance/mark, GET /attendance, GET /attendance/today
type AttendanceModule struct {
	Handler *handlers.AttendanceHandler
	Tokens  middleware.TokenParser
	Limit   middleware.Limiter
}

func NewAttendanceModule(h *handlers.AttendanceHandler, tokens middleware.TokenParser, limit middleware.Limiter) *AttendanceModule {
	return &AttendanceModule{Handler: h, Tokens: tokens, Limit: limit}
}

func (m *AttendanceModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/attendance")
	auth.Use(middleware.BearerAuth(m.Tokens), middleware.UserOnly(), m.Limit(120, time.Minute, middleware.KeyByUserID()))
	{
		auth.POST("/mark", m.Limit(20, time.Minute, middleware.KeyByUserID()), m.Handler.Mark)
		auth.GET("", m.Handler.List)
		auth.GET("/today", m.Handler.Today)
	}
}
