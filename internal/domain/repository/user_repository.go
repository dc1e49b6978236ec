package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("duplicate email")

	// ErrReferenced is returned when a row cannot be removed because another row still points at it.
	ErrReferenced = errors.New("referenced by another record")
)

// UserRepository defines the persistence operations for users.
// Create and Update return ErrDuplicateEmail when the store's unique
// constraint on email rejects the write.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	// ConsumeOTP clears the pending code and marks the user verified in a single
	// conditional write. It reports false when the code does not match or has
	// expired at now, leaving the row untouched.
	ConsumeOTP(ctx context.Context, email, code string, now time.Time) (bool, error)
}
