package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
	repo "github.com/oksasatya/go-attendance-auth/internal/domain/repository"
	"github.com/oksasatya/go-attendance-auth/internal/metrics"
	"github.com/oksasatya/go-attendance-auth/pkg/helpers"
)

// OTPTTL is how long an issued code stays valid.
const OTPTTL = 10 * time.Minute

// OTP purposes select the email wording.
const (
	PurposeVerifyEmail = "verify_email"
	PurposeAdminLogin  = "admin_login"
)

// OTPMessage is handed to the mail collaborator for delivery.
type OTPMessage struct {
	Email     string
	Name      string
	Code      string
	Purpose   string
	ExpiresAt time.Time
}

// OTPSender delivers a code to its owner.
type OTPSender interface {
	SendOTP(ctx context.Context, msg OTPMessage) error
}

// OTPService issues, validates and consumes one-time codes stored on the user row.
type OTPService struct {
	Users   repo.UserRepository
	Sender  OTPSender
	Logger  *logrus.Logger
	Metrics metrics.Recorder

	Generate func() (string, error)
	Now      func() time.Time
}

func NewOTPService(users repo.UserRepository, sender OTPSender, logger *logrus.Logger, m metrics.Recorder) *OTPService {
	if m == nil {
		m = metrics.Nop{}
	}
	return &OTPService{
		Users:    users,
		Sender:   sender,
		Logger:   logger,
		Metrics:  m,
		Generate: helpers.GenOTPCode,
		Now:      time.Now,
	}
}

// Issue stores a fresh code on the user identified by email and sends it.
func (s *OTPService) Issue(ctx context.Context, email, purpose string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.IssueFor(ctx, u, u.FirstName, purpose); err != nil {
		return u, err
	}
	return u, nil
}

// IssueFor stores a fresh code on u and sends it to u's email, addressed to name.
// A delivery failure leaves the stored code in place.
func (s *OTPService) IssueFor(ctx context.Context, u *entity.User, name, purpose string) error {
	code, err := s.Generate()
	if err != nil {
		return err
	}
	expiresAt := s.Now().Add(OTPTTL)
	u.SetOTP(code, expiresAt)
	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.Metrics.RecordOTP("issued")

	if s.Sender == nil {
		return nil
	}
	msg := OTPMessage{Email: u.Email, Name: name, Code: code, Purpose: purpose, ExpiresAt: expiresAt}
	if err := s.Sender.SendOTP(ctx, msg); err != nil {
		s.Metrics.RecordOTP("delivery_failed")
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "purpose": purpose}).Warn("otp delivery failed")
		}
		return ErrDeliveryFailed.With(err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "purpose": purpose, "otp": helpers.MaskOTP(code)}).Debug("otp sent")
	}
	return nil
}

// Validate consumes code for email and marks the user verified. It never fails:
// unknown users, missing, expired or mismatched codes all report false.
func (s *OTPService) Validate(ctx context.Context, email, code string) bool {
	if email == "" || code == "" {
		s.Metrics.RecordOTP("rejected")
		return false
	}
	ok, err := s.Users.ConsumeOTP(ctx, email, code, s.Now())
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Error("otp consume failed")
		}
		s.Metrics.RecordOTP("rejected")
		return false
	}
	if ok {
		s.Metrics.RecordOTP("validated")
	} else {
		s.Metrics.RecordOTP("rejected")
	}
	return ok
}

// ValidateStrict is Validate for callers that must tell failure reasons apart.
// The consume step is the same conditional write, so a code still works once.
func (s *OTPService) ValidateStrict(ctx context.Context, u *entity.User, code string) error {
	now := s.Now()
	switch {
	case !u.HasPendingOTP():
		s.Metrics.RecordOTP("rejected")
		return ErrNoOTPRequested
	case u.OTPExpired(now):
		s.Metrics.RecordOTP("rejected")
		return ErrOTPExpired
	case *u.OTP != code:
		s.Metrics.RecordOTP("rejected")
		return ErrInvalidOTP
	}
	ok, err := s.Users.ConsumeOTP(ctx, u.Email, code, now)
	if err != nil {
		return err
	}
	if !ok {
		// another request consumed or replaced the code after the read above
		s.Metrics.RecordOTP("rejected")
		return ErrInvalidOTP
	}
	u.ClearOTP()
	u.IsVerified = true
	s.Metrics.RecordOTP("validated")
	return nil
}
