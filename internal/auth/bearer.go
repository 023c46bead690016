package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Principal identifies an authorized caller
type Principal struct {
	Subject string
	Method  string // "secret" or "jwt"
}

// BearerVerifier checks Authorization headers against the configured secret.
// A token is accepted when it equals the secret or is a valid JWT signed with it.
type BearerVerifier struct {
	secret []byte
	jwt    *JWTService
}

func NewBearerVerifier(secret string) *BearerVerifier {
	return &BearerVerifier{
		secret: []byte(secret),
		jwt:    NewJWTService(secret),
	}
}

// Verify validates a raw Authorization header value
func (v *BearerVerifier) Verify(header string) (Principal, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return Principal{}, ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrMissingToken
	}
	if len(v.secret) == 0 {
		return Principal{}, ErrInvalidToken
	}

	if subtle.ConstantTimeCompare([]byte(token), v.secret) == 1 {
		return Principal{Subject: "api", Method: "secret"}, nil
	}

	if strings.Count(token, ".") == 2 {
		claims, err := v.jwt.ValidateToken(token)
		if err == nil {
			return Principal{Subject: claims.Subject, Method: "jwt"}, nil
		}
	}
	return Principal{}, ErrInvalidToken
}
