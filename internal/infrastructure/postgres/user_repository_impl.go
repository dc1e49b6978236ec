package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
	"github.com/oksasatya/go-attendance-auth/internal/domain/repository"
)

const userColumns = `id, first_name, last_name, email, password_hash, is_verified, otp, otp_expiry, profile_photo_url, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.IsVerified,
		&u.OTP, &u.OTPExpiry, &u.ProfilePhotoURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	return insertUser(ctx, r.pool, u)
}

// pgx.Tx and *pgxpool.Pool both satisfy querier, so admin creation can reuse the insert inside a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertUser(ctx context.Context, q querier, u *entity.User) error {
	row := q.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email, password_hash, is_verified, otp, otp_expiry, profile_photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, u.FirstName, u.LastName, u.Email, u.Password, u.IsVerified, u.OTP, u.OTPExpiry, u.ProfilePhotoURL)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, password_hash = $4, is_verified = $5,
		    otp = $6, otp_expiry = $7, profile_photo_url = $8, updated_at = $9
		WHERE id = $10
	`, u.FirstName, u.LastName, u.Email, u.Password, u.IsVerified,
		u.OTP, u.OTPExpiry, u.ProfilePhotoURL, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrReferenced
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

// consumeOTPSQL accepts a code whose expiry equals now, matching
// entity.User.OTPExpired, which only expires strictly after.
const consumeOTPSQL = `
	UPDATE users
	SET otp = NULL, otp_expiry = NULL, is_verified = TRUE, updated_at = $4
	WHERE email = $1 AND otp = $2 AND otp_expiry >= $3
`

// ConsumeOTP clears a matching, unexpired code and marks the user verified in
// one statement, so two concurrent verifications cannot both succeed.
func (r *UserRepository) ConsumeOTP(ctx context.Context, email, code string, now time.Time) (bool, error) {
	res, err := r.pool.Exec(ctx, consumeOTPSQL, email, code, now, time.Now())
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
