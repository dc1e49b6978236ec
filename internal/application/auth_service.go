package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
	repo "github.com/oksasatya/go-attendance-auth/internal/domain/repository"
	"github.com/oksasatya/go-attendance-auth/internal/metrics"
	"github.com/oksasatya/go-attendance-auth/pkg/helpers"
)

// TokenIssuer mints signed session tokens.
type TokenIssuer interface {
	Generate(userID int64, email, role string) (string, time.Time, error)
}

// Session is what a successful login returns.
type Session struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      *entity.User  `json:"user,omitempty"`
	Admin     *entity.Admin `json:"admin,omitempty"`
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AuthService drives registration, verification and both login flows.
type AuthService struct {
	Users   repo.UserRepository
	Admins  repo.AdminRepository
	OTP     *OTPService
	Tokens  TokenIssuer
	Index   UserIndexer
	Logger  *logrus.Logger
	Metrics metrics.Recorder
}

func NewAuthService(users repo.UserRepository, admins repo.AdminRepository, otp *OTPService, tokens TokenIssuer, logger *logrus.Logger, m metrics.Recorder) *AuthService {
	if m == nil {
		m = metrics.Nop{}
	}
	return &AuthService{Users: users, Admins: admins, OTP: otp, Tokens: tokens, Logger: logger, Metrics: m}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// emailTaken checks both identity tables. The unique index on users.email
// remains the authority; this only short-circuits the common case.
func emailTaken(ctx context.Context, users repo.UserRepository, admins repo.AdminRepository, email string) (bool, error) {
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return false, err
	}
	if admins == nil {
		return false, nil
	}
	return admins.EmailExists(ctx, email)
}

func mapWriteErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrDuplicateEmail):
		return ErrDuplicateEmail.With(err)
	case errors.Is(err, repo.ErrNotFound):
		return ErrUserNotFound
	}
	return err
}

// Register creates an unverified user and sends a verification code.
// A delivery failure is reported but the user and its stored code remain.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := normalizeEmail(in.Email)
	taken, err := emailTaken(ctx, s.Users, s.Admins, email)
	if err != nil {
		return nil, err
	}
	if taken {
		s.Metrics.RecordAuth("register", "conflict")
		return nil, ErrDuplicateEmail
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     email,
		Password:  hash,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			s.Metrics.RecordAuth("register", "conflict")
		}
		return nil, mapWriteErr(err)
	}
	indexUser(ctx, s.Index, s.Logger, u)

	if err := s.OTP.IssueFor(ctx, u, u.FirstName, PurposeVerifyEmail); err != nil {
		s.Metrics.RecordAuth("register", "delivery_failed")
		return u, err
	}
	s.Metrics.RecordAuth("register", "ok")
	return u, nil
}

// VerifyEmail consumes the code and marks the user verified.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	if !s.OTP.Validate(ctx, normalizeEmail(email), strings.TrimSpace(code)) {
		s.Metrics.RecordAuth("verify_email", "rejected")
		return ErrInvalidOrExpiredOTP
	}
	s.Metrics.RecordAuth("verify_email", "ok")
	return nil
}

// ResendVerification issues a fresh code to an unverified user. Verified users are left alone.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if u.IsVerified {
		return nil
	}
	return s.OTP.IssueFor(ctx, u, u.FirstName, PurposeVerifyEmail)
}

// Login checks the password of a verified user and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Metrics.RecordAuth("login", "invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		s.Metrics.RecordAuth("login", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}
	if !u.IsVerified {
		s.Metrics.RecordAuth("login", "not_verified")
		return nil, ErrNotVerified
	}
	token, exp, err := s.Tokens.Generate(u.ID, u.Email, string(entity.RoleUser))
	if err != nil {
		return nil, err
	}
	s.Metrics.RecordAuth("login", "ok")
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// RegisterAdmin creates an admin together with its already verified linked user.
func (s *AuthService) RegisterAdmin(ctx context.Context, in RegisterInput) (*entity.Admin, error) {
	email := normalizeEmail(in.Email)
	taken, err := emailTaken(ctx, s.Users, s.Admins, email)
	if err != nil {
		return nil, err
	}
	if taken {
		s.Metrics.RecordAuth("register_admin", "conflict")
		return nil, ErrDuplicateEmail
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	u := &entity.User{FirstName: first, LastName: last, Email: email, Password: hash, IsVerified: true}
	a := &entity.Admin{FirstName: first, LastName: last, Email: email, Password: hash}
	if err := s.Admins.CreateWithUser(ctx, a, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			s.Metrics.RecordAuth("register_admin", "conflict")
		}
		return nil, mapWriteErr(err)
	}
	indexUser(ctx, s.Index, s.Logger, u)
	s.Metrics.RecordAuth("register_admin", "ok")
	return a, nil
}

// RequestAdminLogin sends a login code to the admin's linked user.
func (s *AuthService) RequestAdminLogin(ctx context.Context, email string) error {
	a, err := s.Admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Metrics.RecordAuth("admin_otp_request", "not_found")
			return ErrAdminNotFound
		}
		return err
	}
	if a.User == nil {
		return ErrUserNotFound
	}
	if err := s.OTP.IssueFor(ctx, a.User, a.FirstName, PurposeAdminLogin); err != nil {
		return err
	}
	s.Metrics.RecordAuth("admin_otp_request", "ok")
	return nil
}

// CompleteAdminLogin consumes the admin's code and returns an admin session token.
func (s *AuthService) CompleteAdminLogin(ctx context.Context, email, code string) (*Session, error) {
	a, err := s.Admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Metrics.RecordAuth("admin_login", "not_found")
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	if a.User == nil {
		return nil, ErrUserNotFound
	}
	if err := s.OTP.ValidateStrict(ctx, a.User, strings.TrimSpace(code)); err != nil {
		s.Metrics.RecordAuth("admin_login", "rejected")
		return nil, err
	}
	token, exp, err := s.Tokens.Generate(a.ID, a.Email, string(entity.RoleAdmin))
	if err != nil {
		return nil, err
	}
	s.Metrics.RecordAuth("admin_login", "ok")
	return &Session{Token: token, ExpiresAt: exp, Admin: a}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) GetAdminProfile(ctx context.Context, adminID int64) (*entity.Admin, error) {
	a, err := s.Admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return a, nil
}
