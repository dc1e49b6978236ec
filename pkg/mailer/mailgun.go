package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Mailgun wraps Mailgun client configuration.
type Mailgun struct {
	Domain  string
	APIKey  string
	Sender  string
	Timeout time.Duration
}

func NewMailgun(domain, apiKey, sender string, timeout time.Duration) *Mailgun {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender, Timeout: timeout}
}

// Configured reports whether the domain and key are both set.
func (m *Mailgun) Configured() bool {
	return m != nil && m.Domain != "" && m.APIKey != ""
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	client := mg.NewMailgun(m.Domain, m.APIKey)
	msg := client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	_, _, err := client.Send(c, msg)
	return err
}

var _ Sender = (*Mailgun)(nil)
