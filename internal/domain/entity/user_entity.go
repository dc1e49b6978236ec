package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
// Password holds a bcrypt hash. OTP and OTPExpiry are either both set or both nil.
type User struct {
	ID              int64      `json:"id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	Password        string     `json:"-"`
	IsVerified      bool       `json:"isVerified"`
	OTP             *string    `json:"-"`
	OTPExpiry       *time.Time `json:"-"`
	ProfilePhotoURL *string    `json:"profilePhotoUrl"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// SetOTP stores a pending code together with its expiry.
func (u *User) SetOTP(code string, expiresAt time.Time) {
	u.OTP = &code
	u.OTPExpiry = &expiresAt
}

// ClearOTP drops any pending code.
func (u *User) ClearOTP() {
	u.OTP = nil
	u.OTPExpiry = nil
}

// HasPendingOTP reports whether a code was issued and not consumed.
func (u *User) HasPendingOTP() bool {
	return u.OTP != nil && u.OTPExpiry != nil
}

// OTPExpired reports whether now is strictly after the stored expiry.
func (u *User) OTPExpired(now time.Time) bool {
	return u.OTPExpiry == nil || now.After(*u.OTPExpiry)
}
