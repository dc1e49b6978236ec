package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-attendance-auth/internal/interface/http"
	"github.com/oksasatya/go-attendance-auth/internal/interface/middleware"
)

type ProfileModule struct {
	Handler *handlers.ProfileHandler
	Tokens  middleware.TokenParser
	Limit   middleware.Limiter
}

func NewProfileModule(h *handlers.ProfileHandler, tokens middleware.TokenParser, limit middleware.Limiter) *ProfileModule {
	return &ProfileModule{Handler: h, Tokens: tokens, Limit: limit}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/profile")
	auth.Use(middleware.BearerAuth(m.Tokens), middleware.UserOnly(), m.Limit(20, time.Minute, middleware.KeyByUserID()))
	{
		auth.POST("/photo", m.Handler.UploadPhoto)
	}
}
