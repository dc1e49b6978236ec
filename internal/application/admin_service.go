package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
	repo "github.com/oksasatya/go-attendance-auth/internal/domain/repository"
	"github.com/oksasatya/go-attendance-auth/pkg/helpers"
)

type AddUserInput struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	IsVerified bool
}

// UserUpdate carries the fields an admin wants to change. Nil means untouched.
type UserUpdate struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Password   *string
	IsVerified *bool
}

func (u UserUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil && u.Password == nil && u.IsVerified == nil
}

// AdminService is user management for admins.
type AdminService struct {
	Users  repo.UserRepository
	Admins repo.AdminRepository
	OTP    *OTPService
	Index  UserIndexer
	Logger *logrus.Logger
}

func NewAdminService(users repo.UserRepository, admins repo.AdminRepository, otp *OTPService, index UserIndexer, logger *logrus.Logger) *AdminService {
	return &AdminService{Users: users, Admins: admins, OTP: otp, Index: index, Logger: logger}
}

func (s *AdminService) CountUsers(ctx context.Context) (int64, error) {
	return s.Users.Count(ctx)
}

// AddUser creates a user. Unverified users get a verification code like a self registration.
func (s *AdminService) AddUser(ctx context.Context, in AddUserInput) (*entity.User, error) {
	email := normalizeEmail(in.Email)
	taken, err := emailTaken(ctx, s.Users, s.Admins, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateEmail
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      email,
		Password:   hash,
		IsVerified: in.IsVerified,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, mapWriteErr(err)
	}
	indexUser(ctx, s.Index, s.Logger, u)

	if !u.IsVerified && s.OTP != nil {
		if err := s.OTP.IssueFor(ctx, u, u.FirstName, PurposeVerifyEmail); err != nil {
			return u, err
		}
	}
	return u, nil
}

// UpdateUser applies the non-nil fields of upd.
func (s *AdminService) UpdateUser(ctx context.Context, id int64, upd UserUpdate) (*entity.User, error) {
	if upd.Empty() {
		return nil, ErrEmptyUpdate
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if email != u.Email {
			// the admin row keeps its own copy of the email
			if _, err := s.Admins.GetByUserID(ctx, u.ID); err == nil {
				return nil, ErrLinkedEmailLocked
			} else if !errors.Is(err, repo.ErrNotFound) {
				return nil, err
			}
			taken, err := emailTaken(ctx, s.Users, s.Admins, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrDuplicateEmail
			}
			u.Email = email
		}
	}
	if upd.FirstName != nil {
		u.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		u.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.Password != nil {
		hash, err := helpers.HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}
	if upd.IsVerified != nil {
		u.IsVerified = *upd.IsVerified
		if u.IsVerified {
			u.ClearOTP()
		}
	}

	if err := s.Users.Update(ctx, u); err != nil {
		return nil, mapWriteErr(err)
	}
	indexUser(ctx, s.Index, s.Logger, u)
	return u, nil
}

// DeleteUser removes a user unless it backs an admin account.
func (s *AdminService) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if _, err := s.Admins.GetByUserID(ctx, id); err == nil {
		return ErrUserLinkedToAdmin
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	if err := s.Users.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repo.ErrReferenced):
			// an admin was linked after the check above
			return ErrUserLinkedToAdmin
		case errors.Is(err, repo.ErrNotFound):
			return ErrUserNotFound
		}
		return err
	}
	unindexUser(ctx, s.Index, s.Logger, id)
	return nil
}

// SearchUsers queries the search index. Without an index it returns nothing.
func (s *AdminService) SearchUsers(ctx context.Context, q string, size int) ([]entity.User, error) {
	if s.Index == nil {
		return []entity.User{}, nil
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	users, err := s.Index.SearchUsers(ctx, strings.TrimSpace(q), size)
	if err != nil {
		return nil, ErrSearchFailed.With(err)
	}
	return users, nil
}
