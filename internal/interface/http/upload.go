package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	errFileTooLarge = errors.New("file too large")
	errEmptyFile    = errors.New("file is empty")
)

// readUpload reads the multipart file in field. A missing file yields nil data;
// a present but empty one is an error.
func readUpload(c *gin.Context, field string, maxBytes int64) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		return nil, "", err
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, "", errFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = f.Close() }()

	r := io.Reader(f)
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, "", errFileTooLarge
	}
	if len(data) == 0 {
		return nil, "", errEmptyFile
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	return data, ct, nil
}

func isImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}
