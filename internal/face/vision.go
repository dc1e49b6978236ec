package face

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// VisionDetector detects faces with the Cloud Vision images:annotate API.
type VisionDetector struct {
	svc     *vision.Service
	timeout time.Duration
}

// NewVisionDetector returns nil, nil when apiKey is empty so callers fall back.
func NewVisionDetector(ctx context.Context, apiKey string, timeout time.Duration) (*VisionDetector, error) {
	if apiKey == "" {
		return nil, nil
	}
	return newVisionDetector(ctx, timeout, option.WithAPIKey(apiKey))
}

func newVisionDetector(ctx context.Context, timeout time.Duration, opts ...option.ClientOption) (*VisionDetector, error) {
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &VisionDetector{svc: svc, timeout: timeout}, nil
}

func (d *VisionDetector) DetectFaces(ctx context.Context, image []byte) (int, float64, error) {
	if len(image) == 0 {
		return 0, 0, errors.New("empty image")
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*vision.Feature{{Type: "FACE_DETECTION", MaxResults: 5}},
		}},
	}
	resp, err := d.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return 0, 0, err
	}
	if len(resp.Responses) == 0 {
		return 0, 0, nil
	}
	r := resp.Responses[0]
	if r.Error != nil && r.Error.Message != "" {
		return 0, 0, errors.New(r.Error.Message)
	}
	best := 0.0
	for _, f := range r.FaceAnnotations {
		if f.DetectionConfidence > best {
			best = f.DetectionConfidence
		}
	}
	return len(r.FaceAnnotations), best, nil
}
