package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/config"
	"github.com/oksasatya/go-attendance-auth/internal/application"
	"github.com/oksasatya/go-attendance-auth/internal/infrastructure/mail"
	pginfra "github.com/oksasatya/go-attendance-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/go-attendance-auth/internal/metrics"
	"github.com/oksasatya/go-attendance-auth/pkg/helpers"
)

// seed creates the first admin account from SEED_ADMIN_* variables.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		logger.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{DSN: cfg.PostgresDSN(), MaxConns: 2})
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	admins := pginfra.NewAdminRepository(pool)
	otp := application.NewOTPService(users, mail.LogSender{Logger: logger}, logger, metrics.Nop{})
	auth := application.NewAuthService(users, admins, otp, nil, logger, metrics.Nop{})

	admin, err := auth.RegisterAdmin(ctx, application.RegisterInput{
		FirstName: cfg.SeedAdminFirstName,
		LastName:  cfg.SeedAdminLastName,
		Email:     cfg.SeedAdminEmail,
		Password:  cfg.SeedAdminPassword,
	})
	switch {
	case errors.Is(err, application.ErrDuplicateEmail):
		logger.WithField("email", cfg.SeedAdminEmail).Info("admin already seeded")
		return
	case err != nil:
		logger.WithError(err).Error("failed to seed admin")
		os.Exit(1)
	}
	logger.WithFields(logrus.Fields{"admin_id": admin.ID, "email": admin.Email}).Info("seeded admin")
}
