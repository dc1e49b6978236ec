package entity

import (
	"strings"
	"time"
)

type AttendanceType string

const (
	AttendanceIn  AttendanceType = "IN"
	AttendanceOut AttendanceType = "OUT"
)

// ParseAttendanceType accepts only the exact values IN and OUT.
func ParseAttendanceType(s string) (AttendanceType, bool) {
	switch AttendanceType(strings.TrimSpace(s)) {
	case AttendanceIn:
		return AttendanceIn, true
	case AttendanceOut:
		return AttendanceOut, true
	}
	return "", false
}

// Attendance is an immutable event. Timestamp is assigned by the server.
type Attendance struct {
	ID                  int64          `json:"id"`
	UserID              int64          `json:"userId"`
	Type                AttendanceType `json:"type"`
	Timestamp           time.Time      `json:"timestamp"`
	ImageURL            *string        `json:"imageUrl"`
	FaceVerified        bool           `json:"faceVerified"`
	FaceRecognitionData *string        `json:"faceRecognitionData"`
}
