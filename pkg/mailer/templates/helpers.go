package templates

import (
	"strings"
	"time"
)

// Brand holds the sender-side fields shared by every email.
type Brand struct {
	CompanyName string
	AppName     string
	SupportURL  string
}

// Option pattern
type Option func(*EmailData)

func WithExpiresAt(t time.Time, now time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
		if mins := int(t.Sub(now).Round(time.Minute) / time.Minute); mins > 0 {
			d.ExpiresInMinutes = mins
		}
	}
}

func WithPurpose(p string) Option {
	return func(d *EmailData) { d.Purpose = strings.TrimSpace(p) }
}

// NewOTPData fills the common fields from b, then applies opts.
func NewOTPData(b Brand, name, email, code string, opts ...Option) map[string]any {
	d := EmailData{
		Name:        name,
		Email:       email,
		Code:        code,
		CompanyName: b.CompanyName,
		AppName:     b.AppName,
		SupportURL:  b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return ToMap(d)
}
