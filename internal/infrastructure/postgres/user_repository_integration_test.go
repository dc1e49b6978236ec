//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
)

// Runs against a migrated database: DATABASE_URL=... go test -tags integration ./internal/infrastructure/postgres/
func TestConsumeOTPAtExpiry(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, PoolConfig{DSN: dsn})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	repo := NewUserRepository(pool)

	expiry := time.Now().UTC().Truncate(time.Microsecond)
	u := &entity.User{
		FirstName: "Otp",
		Email:     "otp-" + uuid.NewString() + "@example.com",
		Password:  "x",
	}
	u.SetOTP("123456", expiry)
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	defer func() { _ = repo.Delete(ctx, u.ID) }()

	ok, err := repo.ConsumeOTP(ctx, u.Email, "123456", expiry.Add(time.Microsecond))
	if err != nil || ok {
		t.Fatalf("after expiry: ok=%v err=%v", ok, err)
	}
	ok, err = repo.ConsumeOTP(ctx, u.Email, "123456", expiry)
	if err != nil || !ok {
		t.Fatalf("at expiry: ok=%v err=%v", ok, err)
	}
	ok, err = repo.ConsumeOTP(ctx, u.Email, "123456", expiry)
	if err != nil || ok {
		t.Fatalf("second use: ok=%v err=%v", ok, err)
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsVerified || got.OTP != nil || got.OTPExpiry != nil {
		t.Fatalf("after consume: %+v", got)
	}
}
