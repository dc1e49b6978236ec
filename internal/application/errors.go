package application

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the HTTP layer can map it to a status code.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindDomainRule
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindDomainRule:
		return "domain_rule"
	case KindExternal:
		return "external"
	}
	return "unknown"
}

// Error is the single typed failure every workflow operation returns.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so a wrapped copy still equals its sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// With returns a copy of the sentinel carrying the underlying cause.
func (e *Error) With(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrValidation            = newError(KindValidation, "validation_failed", "invalid input")
	ErrNoFile                = newError(KindValidation, "no_file", "no file uploaded")
	ErrInvalidAttendanceType = newError(KindValidation, "invalid_attendance_type", "type must be either 'IN' or 'OUT'")
	ErrEmptyUpdate           = newError(KindValidation, "empty_update", "at least one field must be provided for update")

	ErrUserNotFound  = newError(KindNotFound, "user_not_found", "user not found")
	ErrAdminNotFound = newError(KindNotFound, "admin_not_found", "admin not found")

	ErrDuplicateEmail = newError(KindConflict, "duplicate_email", "email already registered")

	ErrInvalidCredentials = newError(KindUnauthorized, "invalid_credentials", "invalid email or password")
	ErrInvalidToken       = newError(KindUnauthorized, "invalid_token", "invalid or expired token")

	ErrNotVerified         = newError(KindDomainRule, "not_verified", "please verify your email before logging in")
	ErrInvalidOrExpiredOTP = newError(KindDomainRule, "invalid_or_expired_otp", "invalid or expired OTP")
	ErrNoOTPRequested      = newError(KindDomainRule, "no_otp_requested", "no OTP found, please request an OTP first")
	ErrOTPExpired          = newError(KindDomainRule, "otp_expired", "OTP has expired, please request a new OTP")
	ErrInvalidOTP          = newError(KindDomainRule, "invalid_otp", "invalid OTP")
	ErrUserLinkedToAdmin   = newError(KindDomainRule, "user_linked_to_admin", "cannot delete user that is linked to an admin account")
	ErrLinkedEmailLocked   = newError(KindDomainRule, "linked_email_locked", "cannot change the email of a user linked to an admin account")

	ErrDeliveryFailed = newError(KindExternal, "delivery_failed", "failed to send OTP email")
	ErrUploadFailed   = newError(KindExternal, "upload_failed", "failed to upload image")
	ErrSearchFailed   = newError(KindExternal, "search_failed", "user search unavailable")
)

// KindOf reports the Kind of err, or KindUnknown for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Validationf builds an ad hoc validation error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: ErrValidation.Code, Message: fmt.Sprintf(format, args...)}
}
