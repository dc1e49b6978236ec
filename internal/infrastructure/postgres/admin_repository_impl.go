package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
	"github.com/oksasatya/go-attendance-auth/internal/domain/repository"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

const adminJoinSelect = `
	SELECT a.id, a.first_name, a.last_name, a.email, a.password_hash, a.user_id, a.created_at, a.updated_at,
	       u.id, u.first_name, u.last_name, u.email, u.password_hash, u.is_verified, u.otp, u.otp_expiry,
	       u.profile_photo_url, u.created_at, u.updated_at
	FROM admins a
	JOIN users u ON u.id = a.user_id
`

func scanAdmin(row pgx.Row) (*entity.Admin, error) {
	a := &entity.Admin{User: &entity.User{}}
	u := a.User
	if err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Password, &a.UserID, &a.CreatedAt, &a.UpdatedAt,
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.IsVerified, &u.OTP, &u.OTPExpiry,
		&u.ProfilePhotoURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AdminRepository) CreateWithUser(ctx context.Context, a *entity.Admin, u *entity.User) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return err
		}
		a.UserID = u.ID
		row := tx.QueryRow(ctx, `
			INSERT INTO admins (first_name, last_name, email, password_hash, user_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, a.FirstName, a.LastName, a.Email, a.Password, a.UserID)
		if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			if isUniqueViolation(err) {
				return repository.ErrDuplicateEmail
			}
			return err
		}
		a.User = u
		return nil
	})
}

func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*entity.Admin, error) {
	return scanAdmin(r.pool.QueryRow(ctx, adminJoinSelect+` WHERE a.id = $1`, id))
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*entity.Admin, error) {
	return scanAdmin(r.pool.QueryRow(ctx, adminJoinSelect+` WHERE a.email = $1`, email))
}

func (r *AdminRepository) GetByUserID(ctx context.Context, userID int64) (*entity.Admin, error) {
	return scanAdmin(r.pool.QueryRow(ctx, adminJoinSelect+` WHERE a.user_id = $1`, userID))
}

func (r *AdminRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM admins WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

var _ repository.AdminRepository = (*AdminRepository)(nil)
