package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/internal/application"
	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
	"github.com/oksasatya/go-attendance-auth/internal/interface/middleware"
	"github.com/oksasatya/go-attendance-auth/pkg/helpers"
	"github.com/oksasatya/go-attendance-auth/pkg/response"
)

var errInvalidDate = errors.New("invalid date")

type AttendanceRecorder interface {
	Mark(ctx context.Context, in application.MarkInput) (*application.MarkResult, error)
	ListForUser(ctx context.Context, userID int64, start, end *time.Time) ([]entity.Attendance, error)
	Today(ctx context.Context, userID int64) ([]entity.Attendance, error)
}

type AttendanceHandler struct {
	Attendance AttendanceRecorder
	Logger     *logrus.Logger
	MaxBytes   int64
	Location   *time.Location
}

func NewAttendanceHandler(a AttendanceRecorder, logger *logrus.Logger, maxBytes int64, loc *time.Location) *AttendanceHandler {
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceHandler{Attendance: a, Logger: logger, MaxBytes: maxBytes, Location: loc}
}

// Mark POST /api/attendance/mark
// multipart fields: type, image (optional), faceDescriptor (JSON array), useCloudVision
func (h *AttendanceHandler) Mark(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		writeError(c, h.Logger, application.ErrInvalidToken)
		return
	}
	typ := c.PostForm("type")
	if _, ok := entity.ParseAttendanceType(typ); !ok {
		writeError(c, h.Logger, application.ErrInvalidAttendanceType)
		return
	}

	data, ct, err := readUpload(c, "image", h.MaxBytes)
	if err != nil {
		writeError(c, h.Logger, application.Validationf("invalid upload: %v", err))
		return
	}
	if data != nil && !isImage(ct) {
		writeError(c, h.Logger, application.Validationf("only image files are allowed"))
		return
	}

	res, err := h.Attendance.Mark(c.Request.Context(), application.MarkInput{
		UserID:         uid,
		Type:           typ,
		Image:          data,
		ContentType:    ct,
		Descriptor:     parseDescriptor(c.PostForm("faceDescriptor")),
		UseCloudVision: parseFlag(c.PostForm("useCloudVision")),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, res, "Attendance marked as "+typ+" successfully", nil)
}

// parseDescriptor accepts a JSON number array. Anything else means no descriptor.
func parseDescriptor(raw string) []float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var d []float64
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil
	}
	return d
}

func parseFlag(raw string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && b
}

// List GET /api/attendance?startDate=&endDate=
func (h *AttendanceHandler) List(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		writeError(c, h.Logger, application.ErrInvalidToken)
		return
	}
	start, err := parseDate(c.Query("startDate"), h.Location)
	if err != nil {
		writeError(c, h.Logger, application.Validationf("Invalid startDate format"))
		return
	}
	end, err := parseDate(c.Query("endDate"), h.Location)
	if err != nil {
		writeError(c, h.Logger, application.Validationf("Invalid endDate format"))
		return
	}
	list, err := h.Attendance.ListForUser(c.Request.Context(), uid, start, end)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attendance": list}, "Attendance records retrieved successfully", gin.H{"count": len(list)})
}

// Today GET /api/attendance/today
func (h *AttendanceHandler) Today(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		writeError(c, h.Logger, application.ErrInvalidToken)
		return
	}
	list, err := h.Attendance.Today(c.Request.Context(), uid)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attendance": list}, "Today's attendance retrieved successfully", gin.H{"count": len(list)})
}

// parseDate returns nil for an empty value.
func parseDate(raw string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, ok := helpers.ParseTimeIn(raw, loc)
	if !ok {
		return nil, errInvalidDate
	}
	return &t, nil
}
