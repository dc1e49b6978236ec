// Package mail delivers OTP codes through the mail queue or directly via Mailgun.
package mail

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/internal/application"
	"github.com/oksasatya/go-attendance-auth/pkg/helpers"
	"github.com/oksasatya/go-attendance-auth/pkg/mailer"
	"github.com/oksasatya/go-attendance-auth/pkg/mailer/templates"
)

var ErrUnknownPurpose = errors.New("unknown otp purpose")

// TemplateFor maps an OTP purpose to its email template.
func TemplateFor(purpose string) (string, error) {
	switch purpose {
	case application.PurposeVerifyEmail:
		return templates.VerifyEmailOTP, nil
	case application.PurposeAdminLogin:
		return templates.AdminLoginOTP, nil
	}
	return "", ErrUnknownPurpose
}

func jobFor(b templates.Brand, msg application.OTPMessage, now time.Time) (mailer.EmailJob, error) {
	tpl, err := TemplateFor(msg.Purpose)
	if err != nil {
		return mailer.EmailJob{}, err
	}
	return mailer.EmailJob{
		To:       msg.Email,
		Template: tpl,
		Data: templates.NewOTPData(b, msg.Name, msg.Email, msg.Code,
			templates.WithExpiresAt(msg.ExpiresAt, now),
			templates.WithPurpose(msg.Purpose),
		),
	}, nil
}

// Publisher puts a JSON message on the mail queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueSender hands OTP emails to the email worker over RabbitMQ.
type QueueSender struct {
	Pub     Publisher
	Brand   templates.Brand
	Timeout time.Duration
	Now     func() time.Time
}

func NewQueueSender(pub Publisher, b templates.Brand, timeout time.Duration) *QueueSender {
	return &QueueSender{Pub: pub, Brand: b, Timeout: timeout, Now: time.Now}
}

func (s *QueueSender) SendOTP(ctx context.Context, msg application.OTPMessage) error {
	job, err := jobFor(s.Brand, msg, s.Now())
	if err != nil {
		return err
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	return s.Pub.PublishJSON(ctx, job)
}

// DirectSender renders the template in-process and sends it.
type DirectSender struct {
	Mail  mailer.Sender
	Brand templates.Brand
	Now   func() time.Time
}

func NewDirectSender(m mailer.Sender, b templates.Brand) *DirectSender {
	return &DirectSender{Mail: m, Brand: b, Now: time.Now}
}

func (s *DirectSender) SendOTP(ctx context.Context, msg application.OTPMessage) error {
	job, err := jobFor(s.Brand, msg, s.Now())
	if err != nil {
		return err
	}
	return SendJob(ctx, s.Mail, job)
}

// SendJob renders a templated job when needed and sends it. The email worker uses it too.
func SendJob(ctx context.Context, m mailer.Sender, job mailer.EmailJob) error {
	if !job.Valid() {
		return errors.New("invalid email job")
	}
	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		var err error
		subject, text, html, err = templates.Render(job.Template, job.Data)
		if err != nil {
			return err
		}
	}
	return m.Send(ctx, job.To, subject, text, html)
}

// LogSender is used when mail delivery is disabled. It logs the masked code only.
type LogSender struct {
	Logger *logrus.Logger
	// Reveal logs the full code; only set in development.
	Reveal bool
}

func (s LogSender) SendOTP(_ context.Context, msg application.OTPMessage) error {
	if s.Logger == nil {
		return nil
	}
	code := helpers.MaskOTP(msg.Code)
	if s.Reveal {
		code = msg.Code
	}
	s.Logger.WithFields(logrus.Fields{
		"email":      msg.Email,
		"purpose":    msg.Purpose,
		"otp":        code,
		"expires_at": msg.ExpiresAt.Format(time.RFC3339),
	}).Info("mail delivery disabled, otp not sent")
	return nil
}

var (
	_ application.OTPSender = (*QueueSender)(nil)
	_ application.OTPSender = (*DirectSender)(nil)
	_ application.OTPSender = LogSender{}
	_ Publisher             = (*helpers.RabbitPublisher)(nil)
)
