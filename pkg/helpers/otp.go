package helpers

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	otpMin = 100000
	otpMax = 999999
)

var otpSpan = big.NewInt(otpMax - otpMin + 1)

// GenOTPCode returns a uniformly random six-digit code in [100000, 999999].
func GenOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

// MaskOTP hides all but the last two digits, for log lines.
func MaskOTP(code string) string {
	if len(code) <= 2 {
		return "**"
	}
	masked := make([]byte, len(code))
	for i := range masked {
		masked[i] = '*'
	}
	copy(masked[len(code)-2:], code[len(code)-2:])
	return string(masked)
}
