package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
)

// TimeRange bounds a query inclusively; a nil end is unbounded.
type TimeRange struct {
	Start *time.Time
	End   *time.Time
}

type AttendanceRepository interface {
	Create(ctx context.Context, a *entity.Attendance) error
	// ListByUser returns rows newest first.
	ListByUser(ctx context.Context, userID int64, r TimeRange) ([]entity.Attendance, error)
}
