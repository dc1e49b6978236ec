package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
)

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, folder string, ownerID int64, data []byte, contentType string) (string, error)
}

// UserIndexer keeps a searchable copy of user records. It is optional.
type UserIndexer interface {
	IndexUser(ctx context.Context, u *entity.User) error
	DeleteUser(ctx context.Context, id int64) error
	SearchUsers(ctx context.Context, q string, size int) ([]entity.User, error)
}

// Index failures never fail the write that triggered them.
func indexUser(ctx context.Context, idx UserIndexer, logger *logrus.Logger, u *entity.User) {
	if idx == nil {
		return
	}
	if err := idx.IndexUser(ctx, u); err != nil && logger != nil {
		logger.WithError(err).WithField("user_id", u.ID).Warn("search index update failed")
	}
}

func unindexUser(ctx context.Context, idx UserIndexer, logger *logrus.Logger, id int64) {
	if idx == nil {
		return
	}
	if err := idx.DeleteUser(ctx, id); err != nil && logger != nil {
		logger.WithError(err).WithField("user_id", id).Warn("search index delete failed")
	}
}
