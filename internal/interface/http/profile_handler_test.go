package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-attendance-auth/internal/application"
	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
)

func TestUploadPhotoHandler(t *testing.T) {
	var gotData []byte
	up := profileFunc(func(id int64, data []byte, ct string) (*entity.User, error) {
		if len(data) == 0 {
			return nil, application.ErrNoFile
		}
		gotData = data
		url := "https://storage.googleapis.com/b/profile-photos/7/x.jpg"
		return &entity.User{ID: id, ProfilePhotoURL: &url}, nil
	})
	h := NewProfileHandler(up, nil, 1<<20)
	r := gin.New()
	r.POST("/api/profile/photo", asUser(7, entity.RoleUser), h.UploadPhoto)

	w, _ := do(t, r, multipartReq(t, "/api/profile/photo", nil, "photo", jpegBytes, "image/jpeg"))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if len(gotData) != len(jpegBytes) {
		t.Fatalf("data len %d", len(gotData))
	}

	w, env := do(t, r, multipartReq(t, "/api/profile/photo", map[string]string{"x": "y"}, "", nil, ""))
	if w.Code != http.StatusBadRequest || env.Error.Code != "no_file" {
		t.Fatalf("no file: %d %q", w.Code, env.Error.Code)
	}

	gotData = nil
	w, env = do(t, r, multipartReq(t, "/api/profile/photo", nil, "photo", []byte{}, "image/jpeg"))
	if w.Code != http.StatusBadRequest || env.Error.Code == "no_file" || gotData != nil {
		t.Fatalf("empty file: %d %q", w.Code, env.Error.Code)
	}
}
