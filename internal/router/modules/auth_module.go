package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-attendance-auth/internal/interface/http"
	"github.com/oksasatya/go-attendance-auth/internal/interface/middleware"
)

// AuthModule serves user registration, email verification and login.
// Public: POST /auth/register, /auth/login, /auth/verify-email, /auth/resend-otp
// Protected: GET /auth/profile
type AuthModule struct {
	Handler *handlers.AuthHandler
	Tokens  middleware.TokenParser
	Limit   middleware.Limiter
}

func NewAuthModule(h *handlers.AuthHandler, tokens middleware.TokenParser, limit middleware.Limiter) *AuthModule {
	return &AuthModule{Handler: h, Tokens: tokens, Limit: limit}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := m.Limit(10, time.Minute, middleware.KeyByIPAndPath())
	loginLimiter := m.Limit(10, time.Minute, middleware.KeyByIPAndPath())
	otpLimiter := m.Limit(30, time.Minute, middleware.KeyByIPAndPath())
	resendLimiter := m.Limit(5, time.Minute, middleware.KeyByIPAndPath())

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/verify-email", otpLimiter, m.Handler.VerifyEmail)
	rg.POST("/auth/resend-otp", resendLimiter, m.Handler.ResendOTP)

	auth := rg.Group("/auth")
	auth.Use(middleware.BearerAuth(m.Tokens), middleware.UserOnly(), m.Limit(120, time.Minute, middleware.KeyByUserID()))
	{
		auth.GET("/profile", m.Handler.Profile)
	}
}
