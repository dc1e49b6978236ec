package face

import "math"

// MatchThreshold is the Euclidean distance under which two descriptors are the same face.
const MatchThreshold = 0.6

// ErrDimensionMismatch is reported in Result.Error when vector lengths differ.
const ErrDimensionMismatch = "dimension mismatch"

// CompareDescriptors matches candidate against stored. With no stored
// baseline any non-empty candidate passes at reduced confidence.
func CompareDescriptors(candidate, stored []float64) Result {
	if len(stored) == 0 {
		return Result{Verified: len(candidate) > 0, Confidence: 0.5, Method: MethodDescriptorNoBase}
	}
	if len(candidate) != len(stored) {
		return Result{Verified: false, Confidence: 0, Method: MethodDescriptor, Error: ErrDimensionMismatch}
	}
	d := Distance(candidate, stored)
	if d >= MatchThreshold {
		return Result{Verified: false, Confidence: 0, Method: MethodDescriptor}
	}
	return Result{Verified: true, Confidence: math.Max(0, 1-d/MatchThreshold), Method: MethodDescriptor}
}

// Distance is the Euclidean distance between equal-length vectors.
func Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
