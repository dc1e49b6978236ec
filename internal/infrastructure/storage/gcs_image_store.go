package storage

import (
	"context"
	"errors"
	"path"
	"strconv"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/oksasatya/go-attendance-auth/pkg/helpers"
)

var ErrNotConfigured = errors.New("gcs not configured")

type uploadFunc func(ctx context.Context, bucket, objectPath, contentType string, data []byte) (string, error)

// GCSImageStore writes images to <folder>/<ownerID>/<uuid><ext> in one bucket.
type GCSImageStore struct {
	bucket  string
	timeout time.Duration
	upload  uploadFunc
}

func NewGCSImageStore(client *gcs.Client, bucket string, timeout time.Duration) *GCSImageStore {
	s := &GCSImageStore{bucket: bucket, timeout: timeout}
	if client != nil {
		s.upload = func(ctx context.Context, bucket, objectPath, contentType string, data []byte) (string, error) {
			return helpers.UploadBytes(ctx, client, bucket, objectPath, contentType, data)
		}
	}
	return s
}

func (s *GCSImageStore) Upload(ctx context.Context, folder string, ownerID int64, data []byte, contentType string) (string, error) {
	if s == nil || s.upload == nil || s.bucket == "" {
		return "", ErrNotConfigured
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.upload(ctx, s.bucket, ObjectPath(folder, ownerID, contentType), contentType, data)
}

// ObjectPath builds a unique object name for an upload.
func ObjectPath(folder string, ownerID int64, contentType string) string {
	return path.Join(folder, strconv.FormatInt(ownerID, 10), uuid.NewString()+extFor(contentType))
}

func extFor(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ""
}
