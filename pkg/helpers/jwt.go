package helpers

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers malformed, expired and forged tokens alike.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager signs and verifies HS256 bearer tokens.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration
	Issuer string

	now func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration, issuer string) *JWTManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTManager{Secret: []byte(secret), TTL: ttl, Issuer: issuer, now: time.Now}
}

func (m *JWTManager) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

// Claims are the identity claims carried by a session token.
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Generate mints a token for the given identity and returns it with its expiry.
func (m *JWTManager) Generate(userID int64, email, role string) (string, time.Time, error) {
	now := m.clock()
	exp := now.Add(m.TTL)
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    m.Issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Parse validates signature and expiry. Every failure is reported as ErrInvalidToken.
func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock),
	}
	if m.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.Issuer))
	}
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.Secret, nil
	}, opts...)
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
