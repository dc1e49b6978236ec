package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/internal/application"
	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
	"github.com/oksasatya/go-attendance-auth/internal/interface/middleware"
	"github.com/oksasatya/go-attendance-auth/pkg/response"
)

// AuthWorkflow is the identity workflow the handlers drive.
type AuthWorkflow interface {
	Register(ctx context.Context, in application.RegisterInput) (*entity.User, error)
	VerifyEmail(ctx context.Context, email, code string) error
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*application.Session, error)
	RegisterAdmin(ctx context.Context, in application.RegisterInput) (*entity.Admin, error)
	RequestAdminLogin(ctx context.Context, email string) error
	CompleteAdminLogin(ctx context.Context, email, code string) (*application.Session, error)
	GetProfile(ctx context.Context, userID int64) (*entity.User, error)
	GetAdminProfile(ctx context.Context, adminID int64) (*entity.Admin, error)
}

type AuthHandler struct {
	Auth   AuthWorkflow
	Logger *logrus.Logger
}

func NewAuthHandler(auth AuthWorkflow, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Logger: logger}
}

type registerRequest struct {
	FirstName string `json:"firstName" binding:"required,personname"`
	LastName  string `json:"lastName" binding:"required,personname"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
}

func (r registerRequest) input() application.RegisterInput {
	return application.RegisterInput{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, Password: r.Password}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type otpRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,otp"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.Auth.Register(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": u}, "User registered successfully. Please check your email for the OTP.", nil)
}

// VerifyEmail POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Auth.VerifyEmail(c.Request.Context(), req.Email, req.OTP); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true}, "Email verified successfully", nil)
}

// ResendOTP POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Auth.ResendVerification(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true}, "If the account is unverified, a new OTP has been sent", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	s, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, s, "Login successful", gin.H{"expires_at": s.ExpiresAt})
}

// Profile GET /api/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		writeError(c, h.Logger, application.ErrInvalidToken)
		return
	}
	u, err := h.Auth.GetProfile(c.Request.Context(), uid)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "Profile retrieved successfully", nil)
}

// RegisterAdmin POST /api/admin/register
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	a, err := h.Auth.RegisterAdmin(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"admin": a}, "Admin registered successfully", nil)
}

// RequestAdminOTP POST /api/admin/request-otp
func (h *AuthHandler) RequestAdminOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Auth.RequestAdminLogin(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true}, "OTP sent to your email", nil)
}

// VerifyAdminOTPLogin POST /api/admin/verify-otp-login
func (h *AuthHandler) VerifyAdminOTPLogin(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	s, err := h.Auth.CompleteAdminLogin(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, s, "Login successful", gin.H{"expires_at": s.ExpiresAt})
}

// AdminProfile GET /api/admin/profile
func (h *AuthHandler) AdminProfile(c *gin.Context) {
	id, ok := middleware.UserID(c)
	if !ok {
		writeError(c, h.Logger, application.ErrInvalidToken)
		return
	}
	a, err := h.Auth.GetAdminProfile(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"admin": a}, "Profile retrieved successfully", nil)
}
