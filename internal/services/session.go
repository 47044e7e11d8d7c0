package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionIssuer mints the HS256 bearer tokens accepted by middleware.Auth.
type SessionIssuer struct {
	secretKey []byte
	issuer    string
	expiry    time.Duration
	now       func() time.Time
}

func NewSessionIssuer(secretKey, issuer string, expiry time.Duration) (*SessionIssuer, error) {
	if secretKey == "" {
		return nil, errors.New("session secret key is empty")
	}
	return &SessionIssuer{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		expiry:    expiry,
		now:       time.Now,
	}, nil
}

// Issue signs a token for the identity-provider subject.
func (s *SessionIssuer) Issue(subject string, emailVerified bool) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":            subject,
		"email_verified": emailVerified,
		"iat":            now.Unix(),
		"exp":            now.Add(s.expiry).Unix(),
	}
	if s.issuer != "" {
		claims["iss"] = s.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}
