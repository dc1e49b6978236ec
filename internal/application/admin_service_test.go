package application

import (
	"context"
	"errors"
	"testing"

	"github.com/oksasatya/go-attendance-auth/pkg/helpers"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

func TestAddUserAndCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.admin.AddUser(ctx, AddUserInput{FirstName: "V", Email: "v@x.com", Password: "pw123456", IsVerified: true}); err != nil {
		t.Fatal(err)
	}
	if len(f.sender.sent) != 0 {
		t.Fatal("verified user must not receive a code")
	}
	u, err := f.admin.AddUser(ctx, AddUserInput{FirstName: "U", Email: "u@x.com", Password: "pw123456"})
	if err != nil {
		t.Fatal(err)
	}
	if f.sender.last(t).Email != "u@x.com" || f.stored(t, u.ID).OTP == nil {
		t.Fatal("unverified user must receive a code")
	}

	_, err = f.admin.AddUser(ctx, AddUserInput{FirstName: "U", Email: "u@x.com", Password: "pw123456"})
	wantErr(t, err, ErrDuplicateEmail)

	n, err := f.admin.CountUsers(ctx)
	if err != nil || n != 2 {
		t.Fatalf("count = %d, %v", n, err)
	}
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@x.com")
	f.register(t, "bob@x.com")

	_, err := f.admin.UpdateUser(ctx, u.ID, UserUpdate{})
	wantErr(t, err, ErrEmptyUpdate)
	_, err = f.admin.UpdateUser(ctx, 999, UserUpdate{FirstName: strPtr("X")})
	wantErr(t, err, ErrUserNotFound)
	_, err = f.admin.UpdateUser(ctx, u.ID, UserUpdate{Email: strPtr("bob@x.com")})
	wantErr(t, err, ErrDuplicateEmail)

	got, err := f.admin.UpdateUser(ctx, u.ID, UserUpdate{LastName: strPtr("Smith"), Password: strPtr("newpass1"), IsVerified: boolPtr(true)})
	if err != nil {
		t.Fatal(err)
	}
	stored := f.stored(t, u.ID)
	if stored.FirstName != "Alice" || stored.LastName != "Smith" || got.LastName != "Smith" {
		t.Fatalf("names: %+v", stored)
	}
	if !helpers.CompareHashAndPassword(stored.Password, "newpass1") {
		t.Fatal("password not re-hashed")
	}
	if !stored.IsVerified || stored.OTP != nil || stored.OTPExpiry != nil {
		t.Fatalf("forced verification must clear otp: %+v", stored)
	}

	if _, err := f.admin.UpdateUser(ctx, u.ID, UserUpdate{Email: strPtr("alice2@x.com")}); err != nil {
		t.Fatal(err)
	}
	if f.index.indexed[u.ID] != "alice2@x.com" {
		t.Fatalf("index not refreshed: %v", f.index.indexed)
	}
}

func TestUpdateUserKeepsLinkedEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.auth.RegisterAdmin(ctx, RegisterInput{FirstName: "Root", Email: "root@x.com", Password: "pw123456"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.admin.UpdateUser(ctx, a.UserID, UserUpdate{Email: strPtr("other@x.com")})
	wantErr(t, err, ErrLinkedEmailLocked)
	if got := f.stored(t, a.UserID); got.Email != "root@x.com" {
		t.Fatalf("email changed to %q", got.Email)
	}

	// same address and other fields are still editable
	u, err := f.admin.UpdateUser(ctx, a.UserID, UserUpdate{Email: strPtr("ROOT@x.com"), LastName: strPtr("Admin")})
	if err != nil {
		t.Fatal(err)
	}
	if u.LastName != "Admin" {
		t.Fatalf("last name %q", u.LastName)
	}
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@x.com")
	a, err := f.auth.RegisterAdmin(ctx, RegisterInput{FirstName: "Root", Email: "root@x.com", Password: "pw123456"})
	if err != nil {
		t.Fatal(err)
	}

	err = f.admin.DeleteUser(ctx, a.UserID)
	wantErr(t, err, ErrUserLinkedToAdmin)
	if KindOf(err) != KindDomainRule {
		t.Fatalf("kind = %v", KindOf(err))
	}
	if _, gerr := f.users.GetByID(ctx, a.UserID); gerr != nil {
		t.Fatal("linked user removed")
	}

	if err := f.admin.DeleteUser(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.users.GetByID(ctx, u.ID); err == nil {
		t.Fatal("user still present")
	}
	if len(f.index.deleted) != 1 || f.index.deleted[0] != u.ID {
		t.Fatalf("index delete: %v", f.index.deleted)
	}
	wantErr(t, f.admin.DeleteUser(ctx, u.ID), ErrUserNotFound)
}

func TestSearchUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@x.com")

	got, err := f.admin.SearchUsers(ctx, "alice@x.com", 10)
	if err != nil || len(got) != 1 || got[0].ID != u.ID {
		t.Fatalf("search: %+v, %v", got, err)
	}

	f.index.err = errors.New("es down")
	_, err = f.admin.SearchUsers(ctx, "alice@x.com", 10)
	wantErr(t, err, ErrSearchFailed)

	f.admin.Index = nil
	got, err = f.admin.SearchUsers(ctx, "alice@x.com", 10)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("disabled search: %+v, %v", got, err)
	}
}

func TestIndexFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t)
	f.index.err = errors.New("es down")
	f.register(t, "alice@x.com")
}
