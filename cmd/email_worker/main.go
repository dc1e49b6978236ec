package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/config"
	"github.com/oksasatya/go-attendance-auth/internal/infrastructure/mail"
	"github.com/oksasatya/go-attendance-auth/pkg/helpers"
	"github.com/oksasatya/go-attendance-auth/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env, cfg.LogLevel)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailTimeout)
	if !mg.Configured() {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		logger.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		logger.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			handle(ctx, logger, mg, msg)
		}
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	<-stop
	logger.Info("shutting down...")
	cancel()
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
}

// handle drops malformed jobs and requeues jobs whose delivery failed.
func handle(ctx context.Context, logger *logrus.Logger, mg mailer.Sender, msg amqp.Delivery) {
	var job mailer.EmailJob
	if err := json.Unmarshal(msg.Body, &job); err != nil || !job.Valid() {
		logger.WithError(err).Warn("dropping malformed email job")
		_ = msg.Nack(false, false)
		return
	}
	entry := logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template})

	if err := mail.SendJob(ctx, mg, job); err != nil {
		// a redelivered job that fails again is dropped to avoid a hot loop
		requeue := !msg.Redelivered
		entry.WithError(err).WithField("requeue", requeue).Error("email send failed")
		_ = msg.Nack(false, requeue)
		return
	}
	_ = msg.Ack(false)
	entry.Info("email sent")
}
