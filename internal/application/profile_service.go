package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
	repo "github.com/oksasatya/go-attendance-auth/internal/domain/repository"
	"github.com/oksasatya/go-attendance-auth/internal/metrics"
)

const ProfilePhotoFolder = "profile-photos"

type ProfileService struct {
	Users   repo.UserRepository
	Images  ImageStore
	Index   UserIndexer
	Logger  *logrus.Logger
	Metrics metrics.Recorder
}

func NewProfileService(users repo.UserRepository, images ImageStore, logger *logrus.Logger, m metrics.Recorder) *ProfileService {
	if m == nil {
		m = metrics.Nop{}
	}
	return &ProfileService{Users: users, Images: images, Logger: logger, Metrics: m}
}

// UploadProfilePhoto stores the image and records its URL on the user.
func (s *ProfileService) UploadProfilePhoto(ctx context.Context, userID int64, data []byte, contentType string) (*entity.User, error) {
	if len(data) == 0 {
		return nil, ErrNoFile
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	url, err := upload(ctx, s.Images, s.Metrics, ProfilePhotoFolder, userID, data, contentType)
	if err != nil {
		return nil, err
	}
	u.ProfilePhotoURL = &url
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, mapWriteErr(err)
	}
	indexUser(ctx, s.Index, s.Logger, u)
	return u, nil
}

func upload(ctx context.Context, store ImageStore, m metrics.Recorder, folder string, ownerID int64, data []byte, contentType string) (string, error) {
	if store == nil {
		m.RecordUpload(folder, false)
		return "", ErrUploadFailed
	}
	url, err := store.Upload(ctx, folder, ownerID, data, contentType)
	if err != nil {
		m.RecordUpload(folder, false)
		return "", ErrUploadFailed.With(err)
	}
	m.RecordUpload(folder, true)
	return url, nil
}
