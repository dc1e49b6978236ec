package face

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
)

type fakeDetector struct {
	faces int
	conf  float64
	err   error
	calls int
}

func (f *fakeDetector) DetectFaces(context.Context, []byte) (int, float64, error) {
	f.calls++
	return f.faces, f.conf, f.err
}

type fakeBaselines struct {
	desc []float64
	err  error
}

func (f fakeBaselines) Descriptor(context.Context, int64) ([]float64, bool, error) {
	return f.desc, f.desc != nil, f.err
}

func TestBasic(t *testing.T) {
	r := Basic([]byte{1, 2, 3, 4, 5})
	if !r.Verified || r.Confidence != 0.5 || r.Method != MethodBasic {
		t.Fatalf("unexpected result: %+v", r)
	}
	if Basic(nil).Verified {
		t.Fatal("empty image must not verify")
	}
}

func TestCompareDescriptors(t *testing.T) {
	base := []float64{0.1, 0.2, 0.3}

	r := CompareDescriptors([]float64{0.1, 0.2, 0.3}, base)
	if !r.Verified || r.Confidence != 1 || r.Method != MethodDescriptor {
		t.Fatalf("identical vectors: %+v", r)
	}

	r = CompareDescriptors([]float64{0.9, 0.2, 0.3}, base)
	if r.Verified || r.Confidence != 0 {
		t.Fatalf("distance above threshold must not verify: %+v", r)
	}

	r = CompareDescriptors([]float64{0.1, 0.2}, base)
	if r.Verified || r.Error != ErrDimensionMismatch {
		t.Fatalf("mismatched lengths: %+v", r)
	}

	r = CompareDescriptors([]float64{0.4, 0.2, 0.3}, base)
	if !r.Verified || math.Abs(r.Confidence-0.5) > 1e-9 {
		t.Fatalf("distance 0.3: %+v", r)
	}

	r = CompareDescriptors([]float64{0.4}, nil)
	if !r.Verified || r.Confidence != 0.5 || r.Method != MethodDescriptorNoBase {
		t.Fatalf("no baseline: %+v", r)
	}
}

func TestSelectorPicksOneStrategy(t *testing.T) {
	ctx := context.Background()
	img := []byte("image")

	det := &fakeDetector{faces: 1, conf: 0.92}
	s := NewSelector(det, fakeBaselines{desc: []float64{1, 1}})

	r := s.Verify(ctx, Request{Image: img, Descriptor: []float64{1, 1}, UseCloudVision: true})
	if r.Method != MethodCloudVision || !r.Verified || r.Confidence != 0.92 {
		t.Fatalf("cloud vision: %+v", r)
	}
	if det.calls != 1 {
		t.Fatalf("detector calls = %d", det.calls)
	}

	r = s.Verify(ctx, Request{Image: img, Descriptor: []float64{1, 1}})
	if r.Method != MethodDescriptor || !r.Verified || r.Confidence != 1 {
		t.Fatalf("descriptor: %+v", r)
	}

	r = s.Verify(ctx, Request{Image: img})
	if r.Method != MethodBasic || !r.Verified {
		t.Fatalf("basic: %+v", r)
	}
	if det.calls != 1 {
		t.Fatalf("detector called outside cloud vision strategy")
	}
}

func TestSelectorDefaultsToNoBaseline(t *testing.T) {
	s := NewSelector(nil, nil)
	r := s.Verify(context.Background(), Request{Image: []byte("x"), Descriptor: []float64{0.3, 0.1}})
	if r.Method != MethodDescriptorNoBase || !r.Verified || r.Confidence != 0.5 {
		t.Fatalf("unexpected result: %+v", r)
	}
}

func TestSelectorBaselineErrorIsTreatedAsAbsent(t *testing.T) {
	s := NewSelector(nil, fakeBaselines{err: errors.New("db down")})
	r := s.Verify(context.Background(), Request{Image: []byte("x"), Descriptor: []float64{0.3}})
	if r.Method != MethodDescriptorNoBase || !r.Verified {
		t.Fatalf("unexpected result: %+v", r)
	}
}

func TestCloudVisionWithoutCredential(t *testing.T) {
	s := NewSelector(nil, nil)
	r := s.Verify(context.Background(), Request{Image: []byte("x"), UseCloudVision: true})
	if r.Method != MethodCloudVisionNoCreds || !r.Verified || r.Confidence != 0.5 {
		t.Fatalf("unexpected result: %+v", r)
	}
	r = s.Verify(context.Background(), Request{UseCloudVision: true})
	if r.Verified {
		t.Fatal("empty image must not verify")
	}
}

func TestCloudVisionDetectorFailure(t *testing.T) {
	s := NewSelector(&fakeDetector{err: errors.New("quota exceeded")}, nil)
	r := s.Verify(context.Background(), Request{Image: []byte("x"), UseCloudVision: true})
	if r.Verified || r.Confidence != 0 || r.Error != "quota exceeded" {
		t.Fatalf("unexpected result: %+v", r)
	}

	s = NewSelector(&fakeDetector{faces: 0}, nil)
	r = s.Verify(context.Background(), Request{Image: []byte("x"), UseCloudVision: true})
	if r.Verified || r.Error != "" {
		t.Fatalf("no faces: %+v", r)
	}
}

func TestResultJSON(t *testing.T) {
	var got map[string]any
	if err := json.Unmarshal([]byte(Result{Verified: true, Confidence: 0.5, Method: MethodBasic}.JSON()), &got); err != nil {
		t.Fatal(err)
	}
	if _, ok := got["error"]; ok {
		t.Fatal("empty error must be omitted")
	}
	if got["method"] != MethodBasic || got["verified"] != true {
		t.Fatalf("unexpected json: %v", got)
	}
}
