// Package face picks and runs one face verification strategy for an attendance image.
package face

import (
	"context"
	"encoding/json"
)

// Method names recorded with every result.
const (
	MethodBasic              = "basic"
	MethodDescriptor         = "face-api.js"
	MethodDescriptorNoBase   = "face-api.js-basic"
	MethodCloudVision        = "cloud-vision"
	MethodCloudVisionNoCreds = "cloud-vision-fallback"
)

// Result is the uniform outcome of every strategy. Confidence is in [0, 1].
type Result struct {
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
	Error      string  `json:"error,omitempty"`
}

// JSON is the serialized form stored with the attendance row.
func (r Result) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(b)
}

// Request is what the caller supplied along with an image.
type Request struct {
	UserID         int64
	Image          []byte
	Descriptor     []float64
	UseCloudVision bool
}

// Detector finds faces in an image. Confidence is that of the best face.
type Detector interface {
	DetectFaces(ctx context.Context, image []byte) (faces int, confidence float64, err error)
}

// BaselineStore returns the reference descriptor enrolled for a user, if any.
type BaselineStore interface {
	Descriptor(ctx context.Context, userID int64) ([]float64, bool, error)
}

// NoBaseline is the BaselineStore used until descriptors are enrolled: it never has one.
type NoBaseline struct{}

func (NoBaseline) Descriptor(context.Context, int64) ([]float64, bool, error) {
	return nil, false, nil
}

// Selector chooses a strategy from the request flags. A nil Detector means no
// cloud credential is configured.
type Selector struct {
	Detector  Detector
	Baselines BaselineStore
}

func NewSelector(d Detector, b BaselineStore) *Selector {
	if b == nil {
		b = NoBaseline{}
	}
	return &Selector{Detector: d, Baselines: b}
}

// Verify runs exactly one strategy:
// cloud vision when requested, descriptor distance when a descriptor was
// sent, otherwise the basic image check. It never fails.
func (s *Selector) Verify(ctx context.Context, req Request) Result {
	switch {
	case req.UseCloudVision:
		return s.cloudVision(ctx, req.Image)
	case len(req.Descriptor) > 0:
		return s.descriptor(ctx, req.UserID, req.Descriptor)
	default:
		return Basic(req.Image)
	}
}

// Basic passes any non-empty image.
func Basic(image []byte) Result {
	return Result{Verified: len(image) > 0, Confidence: 0.5, Method: MethodBasic}
}

func (s *Selector) descriptor(ctx context.Context, userID int64, candidate []float64) Result {
	var stored []float64
	if s.Baselines != nil {
		d, ok, err := s.Baselines.Descriptor(ctx, userID)
		if err == nil && ok {
			stored = d
		}
	}
	return CompareDescriptors(candidate, stored)
}

func (s *Selector) cloudVision(ctx context.Context, image []byte) Result {
	if s.Detector == nil {
		return Result{Verified: len(image) > 0, Confidence: 0.5, Method: MethodCloudVisionNoCreds}
	}
	faces, conf, err := s.Detector.DetectFaces(ctx, image)
	if err != nil {
		return Result{Verified: false, Confidence: 0, Method: MethodCloudVision, Error: err.Error()}
	}
	if faces == 0 {
		return Result{Verified: false, Confidence: 0, Method: MethodCloudVision}
	}
	return Result{Verified: true, Confidence: clamp01(conf), Method: MethodCloudVision}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
