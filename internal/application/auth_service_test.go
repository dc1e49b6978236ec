package application

import (
	"context"
	"sync"
	"testing"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
)

func TestRegisterVerifyScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@x.com")
	if u.Password == "secret123" {
		t.Fatal("password stored in clear")
	}
	code := f.sender.last(t).Code

	if err := f.auth.VerifyEmail(ctx, "alice@x.com", code); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !f.stored(t, u.ID).IsVerified {
		t.Fatal("user not verified")
	}
	wantErr(t, f.auth.VerifyEmail(ctx, "alice@x.com", code), ErrInvalidOrExpiredOTP)
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@x.com")

	_, err := f.auth.Register(ctx, RegisterInput{FirstName: "B", Email: "Alice@X.com ", Password: "pw123456"})
	wantErr(t, err, ErrDuplicateEmail)
	if KindOf(err) != KindConflict {
		t.Fatalf("kind = %v", KindOf(err))
	}

	_, err = f.auth.RegisterAdmin(ctx, RegisterInput{FirstName: "B", Email: "alice@x.com", Password: "pw123456"})
	wantErr(t, err, ErrDuplicateEmail)
}

func TestRegisterAfterAdminIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.auth.RegisterAdmin(ctx, RegisterInput{FirstName: "Root", Email: "root@x.com", Password: "pw123456"}); err != nil {
		t.Fatal(err)
	}
	_, err := f.auth.Register(ctx, RegisterInput{FirstName: "R", Email: "root@x.com", Password: "pw123456"})
	wantErr(t, err, ErrDuplicateEmail)
}

// The store rejects the second insert even when both pre-checks pass.
func TestRegisterRaceResolvedByStore(t *testing.T) {
	f := newFixture(t)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, clash int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.auth.Register(context.Background(), RegisterInput{FirstName: "A", Email: "race@x.com", Password: "pw123456"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case KindOf(err) == KindConflict:
				clash++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if ok != 1 || clash != 7 {
		t.Fatalf("ok=%d conflict=%d", ok, clash)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@x.com")

	_, err := f.auth.Login(ctx, "alice@x.com", "secret123")
	wantErr(t, err, ErrNotVerified)

	if err := f.auth.VerifyEmail(ctx, "alice@x.com", f.sender.last(t).Code); err != nil {
		t.Fatal(err)
	}

	_, err = f.auth.Login(ctx, "alice@x.com", "wrong")
	wantErr(t, err, ErrInvalidCredentials)
	_, err2 := f.auth.Login(ctx, "nobody@x.com", "secret123")
	wantErr(t, err2, ErrInvalidCredentials)
	if err.Error() != err2.Error() {
		t.Fatalf("messages differ: %q vs %q", err, err2)
	}

	s, err := f.auth.Login(ctx, "alice@x.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := f.jwt.Parse(s.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != u.ID || claims.Email != "alice@x.com" || claims.Role != string(entity.RoleUser) {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestResendVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@x.com")
	first := f.sender.last(t).Code

	if err := f.auth.ResendVerification(ctx, "alice@x.com"); err != nil {
		t.Fatal(err)
	}
	second := f.sender.last(t).Code
	if len(f.sender.sent) != 2 {
		t.Fatalf("sent = %d", len(f.sender.sent))
	}
	if first != second && f.otp.Validate(ctx, "alice@x.com", first) {
		t.Fatal("replaced code still valid")
	}
	if !f.otp.Validate(ctx, "alice@x.com", second) {
		t.Fatal("fresh code rejected")
	}

	if err := f.auth.ResendVerification(ctx, "alice@x.com"); err != nil {
		t.Fatal(err)
	}
	if len(f.sender.sent) != 2 {
		t.Fatal("verified user must not get another code")
	}
	wantErr(t, f.auth.ResendVerification(ctx, "nobody@x.com"), ErrUserNotFound)
}

func TestAdminRegisterAndOTPLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.auth.RegisterAdmin(ctx, RegisterInput{FirstName: "Root", LastName: "Admin", Email: "root@x.com", Password: "pw123456"})
	if err != nil {
		t.Fatal(err)
	}
	linked := f.stored(t, a.UserID)
	if !linked.IsVerified || linked.Email != "root@x.com" {
		t.Fatalf("linked user: %+v", linked)
	}

	wantErr(t, f.auth.RequestAdminLogin(ctx, "nobody@x.com"), ErrAdminNotFound)
	_, err = f.auth.CompleteAdminLogin(ctx, "root@x.com", "123456")
	wantErr(t, err, ErrNoOTPRequested)

	if err := f.auth.RequestAdminLogin(ctx, "root@x.com"); err != nil {
		t.Fatal(err)
	}
	msg := f.sender.last(t)
	if msg.Purpose != PurposeAdminLogin || msg.Name != "Root" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	s, err := f.auth.CompleteAdminLogin(ctx, "root@x.com", msg.Code)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := f.jwt.Parse(s.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != a.ID || claims.Email != a.Email || claims.Role != string(entity.RoleAdmin) {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	_, err = f.auth.CompleteAdminLogin(ctx, "root@x.com", msg.Code)
	wantErr(t, err, ErrNoOTPRequested)
	_, err = f.auth.CompleteAdminLogin(ctx, "nobody@x.com", msg.Code)
	wantErr(t, err, ErrAdminNotFound)
}

func TestProfiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@x.com")

	got, err := f.auth.GetProfile(ctx, u.ID)
	if err != nil || got.Email != "alice@x.com" {
		t.Fatalf("profile: %+v, %v", got, err)
	}
	_, err = f.auth.GetProfile(ctx, 999)
	wantErr(t, err, ErrUserNotFound)

	a, err := f.auth.RegisterAdmin(ctx, RegisterInput{FirstName: "Root", Email: "root@x.com", Password: "pw123456"})
	if err != nil {
		t.Fatal(err)
	}
	ga, err := f.auth.GetAdminProfile(ctx, a.ID)
	if err != nil || ga.User == nil || ga.User.ID != a.UserID {
		t.Fatalf("admin profile: %+v, %v", ga, err)
	}
	_, err = f.auth.GetAdminProfile(ctx, 999)
	wantErr(t, err, ErrAdminNotFound)
}
