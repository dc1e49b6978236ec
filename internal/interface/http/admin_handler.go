package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/internal/application"
	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
	"github.com/oksasatya/go-attendance-auth/pkg/response"
)

type UserManager interface {
	CountUsers(ctx context.Context) (int64, error)
	AddUser(ctx context.Context, in application.AddUserInput) (*entity.User, error)
	UpdateUser(ctx context.Context, id int64, upd application.UserUpdate) (*entity.User, error)
	DeleteUser(ctx context.Context, id int64) error
	SearchUsers(ctx context.Context, q string, size int) ([]entity.User, error)
}

type AdminHandler struct {
	Users  UserManager
	Logger *logrus.Logger
}

func NewAdminHandler(users UserManager, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Users: users, Logger: logger}
}

type addUserRequest struct {
	FirstName  string `json:"firstName" binding:"required,personname"`
	LastName   string `json:"lastName" binding:"required,personname"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,pwd"`
	IsVerified bool   `json:"isVerified"`
}

// Pointer fields distinguish "absent" from "set to the zero value".
type updateUserRequest struct {
	FirstName  *string `json:"firstName" binding:"omitempty,personname"`
	LastName   *string `json:"lastName" binding:"omitempty,personname"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Password   *string `json:"password" binding:"omitempty,pwd"`
	IsVerified *bool   `json:"isVerified"`
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// CountUsers GET /api/admin/users/count
func (h *AdminHandler) CountUsers(c *gin.Context) {
	n, err := h.Users.CountUsers(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"totalUsers": n}, "User count retrieved successfully", nil)
}

// AddUser POST /api/admin/users
func (h *AdminHandler) AddUser(c *gin.Context) {
	var req addUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.Users.AddUser(c.Request.Context(), application.AddUserInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
		IsVerified: req.IsVerified,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": u}, "User created successfully", nil)
}

// UpdateUser PUT /api/admin/users/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		writeError(c, h.Logger, application.Validationf("Invalid user ID"))
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.Users.UpdateUser(c.Request.Context(), id, application.UserUpdate{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
		IsVerified: req.IsVerified,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "User updated successfully", nil)
}

// DeleteUser DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		writeError(c, h.Logger, application.Validationf("Invalid user ID"))
		return
	}
	if err := h.Users.DeleteUser(c.Request.Context(), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "User deleted successfully", nil)
}

// SearchUsers GET /api/admin/users/search?q=&size=
func (h *AdminHandler) SearchUsers(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	users, err := h.Users.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users}, "Users retrieved successfully", gin.H{"count": len(users)})
}
