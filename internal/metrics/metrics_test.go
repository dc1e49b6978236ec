package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecordsCounters(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordOTP("issued")
	c.RecordOTP("issued")
	c.RecordAuth("login", "ok")
	c.RecordAttendance("IN", "basic", true)
	c.RecordAttendance("OUT", "", false)
	c.RecordUpload("attendance-photos", false)

	if got := testutil.ToFloat64(c.otpEvents.WithLabelValues("issued")); got != 2 {
		t.Errorf("otp issued = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.authEvents.WithLabelValues("login", "ok")); got != 1 {
		t.Errorf("login ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.attendance.WithLabelValues("OUT", "none", "false")); got != 1 {
		t.Errorf("attendance OUT/none = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.uploads.WithLabelValues("attendance-photos", "error")); got != 1 {
		t.Errorf("upload error = %v, want 1", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.ObserveHTTP("/api/auth/login", http.MethodPost, 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "attendance_auth_http_requests_total") {
		t.Error("expected http request counter in exposition output")
	}
}
