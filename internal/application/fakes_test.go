package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
	repo "github.com/oksasatya/go-attendance-auth/internal/domain/repository"
	"github.com/oksasatya/go-attendance-auth/pkg/helpers"
)

func TestMain(m *testing.M) {
	helpers.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// memStore backs the user and admin fakes with one lock so the email
// uniqueness it enforces spans both tables like the real schema does.
type memStore struct {
	mu          sync.Mutex
	nextUser    int64
	nextAdmin   int64
	users       map[int64]entity.User
	admins      map[int64]entity.Admin
	attendances []entity.Attendance
}

func newMemStore() *memStore {
	return &memStore{users: map[int64]entity.User{}, admins: map[int64]entity.Admin{}}
}

func (m *memStore) emailInUse(email string, exceptUser int64) bool {
	for id, u := range m.users {
		if u.Email == email && id != exceptUser {
			return true
		}
	}
	return false
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.emailInUse(u.Email, 0) {
		return repo.ErrDuplicateEmail
	}
	r.s.nextUser++
	u.ID = r.s.nextUser
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r memUsers) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	if r.s.emailInUse(u.Email, u.ID) {
		return repo.ErrDuplicateEmail
	}
	u.UpdatedAt = time.Now()
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repo.ErrNotFound
	}
	for _, a := range r.s.admins {
		if a.UserID == id {
			return repo.ErrReferenced
		}
	}
	delete(r.s.users, id)
	return nil
}

func (r memUsers) Count(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

func (r memUsers) ConsumeOTP(_ context.Context, email, code string, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		if u.Email != email {
			continue
		}
		if u.OTP == nil || u.OTPExpiry == nil || *u.OTP != code || now.After(*u.OTPExpiry) {
			return false, nil
		}
		u.ClearOTP()
		u.IsVerified = true
		r.s.users[id] = u
		return true, nil
	}
	return false, nil
}

type memAdmins struct{ s *memStore }

func (r memAdmins) CreateWithUser(ctx context.Context, a *entity.Admin, u *entity.User) error {
	if err := (memUsers{r.s}).Create(ctx, u); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextAdmin++
	a.ID = r.s.nextAdmin
	a.UserID = u.ID
	r.s.admins[a.ID] = *a
	a.User = u
	return nil
}

func (r memAdmins) withUser(a entity.Admin) *entity.Admin {
	u := r.s.users[a.UserID]
	a.User = &u
	return &a
}

func (r memAdmins) GetByID(_ context.Context, id int64) (*entity.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.admins[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return r.withUser(a), nil
}

func (r memAdmins) GetByEmail(_ context.Context, email string) (*entity.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.admins {
		if a.Email == email {
			return r.withUser(a), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r memAdmins) GetByUserID(_ context.Context, userID int64) (*entity.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.admins {
		if a.UserID == userID {
			return r.withUser(a), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r memAdmins) EmailExists(_ context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.admins {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type memAttendances struct{ s *memStore }

func (r memAttendances) Create(_ context.Context, a *entity.Attendance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = int64(len(r.s.attendances) + 1)
	r.s.attendances = append(r.s.attendances, *a)
	return nil
}

func (r memAttendances) ListByUser(_ context.Context, userID int64, tr repo.TimeRange) ([]entity.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Attendance
	for _, a := range r.s.attendances {
		if a.UserID != userID {
			continue
		}
		if tr.Start != nil && a.Timestamp.Before(*tr.Start) {
			continue
		}
		if tr.End != nil && a.Timestamp.After(*tr.End) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []OTPMessage
	err  error
}

func (f *fakeSender) SendOTP(_ context.Context, msg OTPMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeSender) last(t *testing.T) OTPMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no otp sent")
	}
	return f.sent[len(f.sent)-1]
}

type fakeImages struct {
	uploads []string
	err     error
}

func (f *fakeImages) Upload(_ context.Context, folder string, ownerID int64, data []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	url := fmt.Sprintf("https://storage.googleapis.com/test/%s/%d.jpg", folder, ownerID)
	f.uploads = append(f.uploads, folder)
	return url, nil
}

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[int64]string
	deleted []int64
	err     error
}

func newFakeIndex() *fakeIndex { return &fakeIndex{indexed: map[int64]string{}} }

func (f *fakeIndex) IndexUser(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.indexed[u.ID] = u.Email
	return nil
}

func (f *fakeIndex) DeleteUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) SearchUsers(_ context.Context, q string, _ int) ([]entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.User
	for id, email := range f.indexed {
		if email == q {
			out = append(out, entity.User{ID: id, Email: email})
		}
	}
	return out, nil
}

// fixture wires every service over one memStore with a controllable clock.
type fixture struct {
	store  *memStore
	users  memUsers
	admins memAdmins
	sender *fakeSender
	images *fakeImages
	index  *fakeIndex
	jwt    *helpers.JWTManager
	now    time.Time

	otp        *OTPService
	auth       *AuthService
	admin      *AdminService
	profile    *ProfileService
	attendance *AttendanceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  newMemStore(),
		sender: &fakeSender{},
		images: &fakeImages{},
		index:  newFakeIndex(),
		jwt:    helpers.NewJWTManager("test-secret", time.Hour, ""),
		now:    time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC),
	}
	f.users = memUsers{f.store}
	f.admins = memAdmins{f.store}
	clock := func() time.Time { return f.now }

	f.otp = NewOTPService(f.users, f.sender, nil, nil)
	f.otp.Now = clock
	f.auth = NewAuthService(f.users, f.admins, f.otp, f.jwt, nil, nil)
	f.auth.Index = f.index
	f.admin = NewAdminService(f.users, f.admins, f.otp, f.index, nil)
	f.profile = NewProfileService(f.users, f.images, nil, nil)
	f.profile.Index = f.index
	f.attendance = NewAttendanceService(f.users, memAttendances{f.store}, f.images, nil, time.UTC, nil, nil)
	f.attendance.Now = clock
	return f
}

func (f *fixture) register(t *testing.T, email string) *entity.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), RegisterInput{FirstName: "Alice", LastName: "Doe", Email: email, Password: "secret123"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u
}

func (f *fixture) verified(t *testing.T, email string) *entity.User {
	t.Helper()
	u := f.register(t, email)
	if err := f.auth.VerifyEmail(context.Background(), email, f.sender.last(t).Code); err != nil {
		t.Fatalf("verify %s: %v", email, err)
	}
	return u
}

func (f *fixture) stored(t *testing.T, id int64) entity.User {
	t.Helper()
	u, err := f.users.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load user %d: %v", id, err)
	}
	return *u
}

func wantErr(t *testing.T, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Fatalf("err = %v, want %v", got, want)
	}
}
