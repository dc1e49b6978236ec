package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
	"github.com/oksasatya/go-attendance-auth/internal/domain/repository"
)

type AttendanceRepository struct {
	pool *pgxpool.Pool
}

func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

func (r *AttendanceRepository) Create(ctx context.Context, a *entity.Attendance) error {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO attendances (user_id, type, "timestamp", image_url, face_verified, face_recognition_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, a.UserID, string(a.Type), a.Timestamp, a.ImageURL, a.FaceVerified, a.FaceRecognitionData)
	return row.Scan(&a.ID)
}

func (r *AttendanceRepository) ListByUser(ctx context.Context, userID int64, tr repository.TimeRange) ([]entity.Attendance, error) {
	query := `SELECT id, user_id, type, "timestamp", image_url, face_verified, face_recognition_data FROM attendances`
	args := []any{userID}
	clauses := []string{"user_id = $1"}
	if tr.Start != nil {
		args = append(args, *tr.Start)
		clauses = append(clauses, `"timestamp" >= $`+strconv.Itoa(len(args)))
	}
	if tr.End != nil {
		args = append(args, *tr.End)
		clauses = append(clauses, `"timestamp" <= $`+strconv.Itoa(len(args)))
	}
	query += " WHERE " + strings.Join(clauses, " AND ") + ` ORDER BY "timestamp" DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []entity.Attendance{}
	for rows.Next() {
		var a entity.Attendance
		var typ string
		if err := rows.Scan(&a.ID, &a.UserID, &typ, &a.Timestamp, &a.ImageURL, &a.FaceVerified, &a.FaceRecognitionData); err != nil {
			return nil, err
		}
		a.Type = entity.AttendanceType(typ)
		res = append(res, a)
	}
	return res, rows.Err()
}

var _ repository.AttendanceRepository = (*AttendanceRepository)(nil)
