package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
	repo "github.com/oksasatya/go-attendance-auth/internal/domain/repository"
	"github.com/oksasatya/go-attendance-auth/internal/face"
	"github.com/oksasatya/go-attendance-auth/internal/metrics"
)

const AttendancePhotoFolder = "attendance-photos"

// FaceVerifier runs one verification strategy for an attendance image.
type FaceVerifier interface {
	Verify(ctx context.Context, req face.Request) face.Result
}

type MarkInput struct {
	UserID         int64
	Type           string
	Image          []byte
	ContentType    string
	Descriptor     []float64
	UseCloudVision bool
}

type MarkResult struct {
	Attendance      *entity.Attendance `json:"attendance"`
	FaceRecognition *face.Result       `json:"faceRecognition"`
}

// AttendanceService records IN/OUT events. Sequencing is not enforced:
// consecutive INs or an OUT without an IN are accepted.
type AttendanceService struct {
	Users       repo.UserRepository
	Attendances repo.AttendanceRepository
	Images      ImageStore
	Faces       FaceVerifier
	Location    *time.Location
	Logger      *logrus.Logger
	Metrics     metrics.Recorder

	Now func() time.Time
}

func NewAttendanceService(users repo.UserRepository, attendances repo.AttendanceRepository, images ImageStore, faces FaceVerifier, loc *time.Location, logger *logrus.Logger, m metrics.Recorder) *AttendanceService {
	if m == nil {
		m = metrics.Nop{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceService{
		Users:       users,
		Attendances: attendances,
		Images:      images,
		Faces:       faces,
		Location:    loc,
		Logger:      logger,
		Metrics:     m,
		Now:         time.Now,
	}
}

// Mark records one attendance event. When an image is present it is uploaded
// first; an upload failure aborts without writing a row.
func (s *AttendanceService) Mark(ctx context.Context, in MarkInput) (*MarkResult, error) {
	typ, ok := entity.ParseAttendanceType(in.Type)
	if !ok {
		return nil, ErrInvalidAttendanceType
	}
	if _, err := s.Users.GetByID(ctx, in.UserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	a := &entity.Attendance{UserID: in.UserID, Type: typ}
	var result *face.Result
	if len(in.Image) > 0 {
		url, err := upload(ctx, s.Images, s.Metrics, AttendancePhotoFolder, in.UserID, in.Image, in.ContentType)
		if err != nil {
			return nil, err
		}
		a.ImageURL = &url

		r := s.verify(ctx, in)
		result = &r
		a.FaceVerified = r.Verified
		data := r.JSON()
		a.FaceRecognitionData = &data
	}
	a.Timestamp = s.Now()

	if err := s.Attendances.Create(ctx, a); err != nil {
		return nil, err
	}

	method := ""
	if result != nil {
		method = result.Method
	}
	s.Metrics.RecordAttendance(string(typ), method, a.FaceVerified)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"user_id":       in.UserID,
			"type":          typ,
			"method":        method,
			"face_verified": a.FaceVerified,
		}).Info("attendance marked")
	}
	return &MarkResult{Attendance: a, FaceRecognition: result}, nil
}

func (s *AttendanceService) verify(ctx context.Context, in MarkInput) face.Result {
	req := face.Request{UserID: in.UserID, Image: in.Image, Descriptor: in.Descriptor, UseCloudVision: in.UseCloudVision}
	if s.Faces == nil {
		return face.NewSelector(nil, nil).Verify(ctx, req)
	}
	return s.Faces.Verify(ctx, req)
}

// ListForUser returns the user's events newest first, optionally bounded inclusively.
func (s *AttendanceService) ListForUser(ctx context.Context, userID int64, start, end *time.Time) ([]entity.Attendance, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	list, err := s.Attendances.ListByUser(ctx, userID, repo.TimeRange{Start: start, End: end})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entity.Attendance{}
	}
	return list, nil
}

// Today lists events between local midnight and the next midnight.
func (s *AttendanceService) Today(ctx context.Context, userID int64) ([]entity.Attendance, error) {
	start, end := DayBounds(s.Now(), s.Location)
	return s.ListForUser(ctx, userID, &start, &end)
}

// DayBounds returns midnight of t's day in loc and the following midnight.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
