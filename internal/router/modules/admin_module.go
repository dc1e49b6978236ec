package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-attendance-auth/internal/interface/http"
	"github.com/oksasatya/go-attendance-auth/internal/interface/middleware"
)

// AdminModule serves admin onboarding, OTP login and user management.
// Public: POST /admin/register, /admin/request-otp, /admin/verify-otp-login, GET /admin/users/count
// Admin role: GET /admin/profile, POST/PUT/DELETE /admin/users, GET /admin/users/search
type AdminModule struct {
	Auth   *handlers.AuthHandler
	Users  *handlers.AdminHandler
	Tokens middleware.TokenParser
	Limit  middleware.Limiter
}

func NewAdminModule(auth *handlers.AuthHandler, users *handlers.AdminHandler, tokens middleware.TokenParser, limit middleware.Limiter) *AdminModule {
	return &AdminModule{Auth: auth, Users: users, Tokens: tokens, Limit: limit}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	rg.POST("/admin/register", m.Limit(5, time.Minute, middleware.KeyByIPAndPath()), m.Auth.RegisterAdmin)
	rg.POST("/admin/request-otp", m.Limit(5, time.Minute, middleware.KeyByIPAndPath()), m.Auth.RequestAdminOTP)
	rg.POST("/admin/verify-otp-login", m.Limit(30, time.Minute, middleware.KeyByIPAndPath()), m.Auth.VerifyAdminOTPLogin)
	rg.GET("/admin/users/count", m.Limit(60, time.Minute, middleware.KeyByIPAndPath()), m.Users.CountUsers)

	admin := rg.Group("/admin")
	admin.Use(
		middleware.BearerAuth(m.Tokens),
		middleware.AdminOnly(),
		m.Limit(120, time.Minute, middleware.KeyByUserID()),
	)
	{
		admin.GET("/profile", m.Auth.AdminProfile)
		admin.POST("/users", m.Users.AddUser)
		admin.PUT("/users/:id", m.Users.UpdateUser)
		admin.DELETE("/users/:id", m.Users.DeleteUser)
		admin.GET("/users/search", m.Users.SearchUsers)
	}
}
