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

type ProfileUploader interface {
	UploadProfilePhoto(ctx context.Context, userID int64, data []byte, contentType string) (*entity.User, error)
}

type ProfileHandler struct {
	Profiles ProfileUploader
	Logger   *logrus.Logger
	MaxBytes int64
}

func NewProfileHandler(p ProfileUploader, logger *logrus.Logger, maxBytes int64) *ProfileHandler {
	return &ProfileHandler{Profiles: p, Logger: logger, MaxBytes: maxBytes}
}

// UploadPhoto POST /api/profile/photo (multipart field "photo")
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		writeError(c, h.Logger, application.ErrInvalidToken)
		return
	}
	data, ct, err := readUpload(c, "photo", h.MaxBytes)
	if err != nil {
		writeError(c, h.Logger, application.Validationf("invalid upload: %v", err))
		return
	}
	if data != nil && !isImage(ct) {
		writeError(c, h.Logger, application.Validationf("only image files are allowed"))
		return
	}
	u, err := h.Profiles.UploadProfilePhoto(c.Request.Context(), uid, data, ct)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "Profile photo uploaded successfully", nil)
}
