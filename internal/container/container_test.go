package container

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/config"
	"github.com/oksasatya/go-attendance-auth/internal/infrastructure/mail"
	"github.com/oksasatya/go-attendance-auth/pkg/helpers"
	"github.com/oksasatya/go-attendance-auth/pkg/mailer"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestOTPSenderSelection(t *testing.T) {
	configured := mailer.NewMailgun("mg.example.com", "key", "noreply@example.com", time.Second)
	bare := mailer.NewMailgun("", "", "", time.Second)

	cases := []struct {
		name    string
		enabled bool
		rabbit  *helpers.RabbitPublisher
		mg      *mailer.Mailgun
		want    string
	}{
		{"disabled", false, &helpers.RabbitPublisher{}, configured, "log"},
		{"queue", true, &helpers.RabbitPublisher{}, configured, "queue"},
		{"direct", true, nil, configured, "direct"},
		{"nothing configured", true, nil, bare, "log"},
	}
	for _, tc := range cases {
		c := &Container{
			Config:  &config.Config{MailSendEnabled: tc.enabled, Env: "production"},
			Logger:  quietLogger(),
			Rabbit:  tc.rabbit,
			Mailgun: tc.mg,
		}
		var got string
		switch s := c.otpSender().(type) {
		case mail.LogSender:
			got = "log"
			if s.Reveal {
				t.Fatalf("%s: codes revealed outside development", tc.name)
			}
		case *mail.QueueSender:
			got = "queue"
		case *mail.DirectSender:
			got = "direct"
		}
		if got != tc.want {
			t.Fatalf("%s: sender = %s, want %s", tc.name, got, tc.want)
		}
	}
}
