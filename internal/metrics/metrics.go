// Package metrics exposes Prometheus counters for the identity and attendance workflows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the application layer reports into.
type Recorder interface {
	RecordOTP(event string)
	RecordAuth(flow, outcome string)
	RecordAttendance(attendanceType, method string, verified bool)
	RecordUpload(folder string, ok bool)
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordOTP(string)                              {}
func (Nop) RecordAuth(string, string)                     {}
func (Nop) RecordAttendance(string, string, bool)         {}
func (Nop) RecordUpload(string, bool)                     {}
func (Nop) ObserveHTTP(string, string, int, time.Duration) {}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	otpEvents    *prometheus.CounterVec
	authEvents   *prometheus.CounterVec
	attendance   *prometheus.CounterVec
	uploads      *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	gatherer     prometheus.Gatherer
}

// NewCollector registers all metrics on reg. Passing a fresh prometheus.NewRegistry keeps tests isolated.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		otpEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_auth_otp_events_total",
			Help: "OTP lifecycle events by kind.",
		}, []string{"event"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_auth_auth_events_total",
			Help: "Identity workflow outcomes by flow.",
		}, []string{"flow", "outcome"}),
		attendance: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_auth_attendance_marks_total",
			Help: "Attendance marks by type, verification method and result.",
		}, []string{"type", "method", "verified"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_auth_image_uploads_total",
			Help: "Blob storage uploads by folder and result.",
		}, []string{"folder", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_auth_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendance_auth_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		gatherer: reg,
	}

	reg.MustRegister(
		c.otpEvents,
		c.authEvents,
		c.attendance,
		c.uploads,
		c.httpRequests,
		c.httpDuration,
	)
	return c
}

func (c *Collector) RecordOTP(event string) {
	c.otpEvents.WithLabelValues(event).Inc()
}

func (c *Collector) RecordAuth(flow, outcome string) {
	c.authEvents.WithLabelValues(flow, outcome).Inc()
}

func (c *Collector) RecordAttendance(attendanceType, method string, verified bool) {
	if method == "" {
		method = "none"
	}
	c.attendance.WithLabelValues(attendanceType, method, strconv.FormatBool(verified)).Inc()
}

func (c *Collector) RecordUpload(folder string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	c.uploads.WithLabelValues(folder, result).Inc()
}

// ObserveHTTP records one finished request.
func (c *Collector) ObserveHTTP(route, method string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// Handler serves the registry this collector was registered on.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

var (
	_ Recorder = Nop{}
	_ Recorder = (*Collector)(nil)
)
