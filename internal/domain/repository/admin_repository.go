package repository

import (
	"context"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
)

type AdminRepository interface {
	// CreateWithUser persists the linked user and the admin together.
	CreateWithUser(ctx context.Context, a *entity.Admin, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.Admin, error)
	// GetByEmail loads the admin with its linked User populated.
	GetByEmail(ctx context.Context, email string) (*entity.Admin, error)
	GetByUserID(ctx context.Context, userID int64) (*entity.Admin, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}
