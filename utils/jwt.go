package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	secretKey = []byte("supersecret")
	tokenTTL  = 72 * time.Hour
)

// ErrInvalidToken covers malformed, expired and badly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// ConfigureJWT sets the signing secret and token lifetime. Called once at
// startup; the defaults only serve tests and local runs.
func ConfigureJWT(secret string, ttl time.Duration) {
	if secret != "" {
		secretKey = []byte(secret)
	}
	if ttl > 0 {
		tokenTTL = ttl
	}
}

// GenerateToken issues a signed, time-limited token carrying the email claim.
func GenerateToken(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(tokenTTL).Unix(),
	})
	return token.SignedString(secretKey)
}

// VerifyToken returns the email claim or ErrInvalidToken.
func VerifyToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrInvalidToken
	}
	return email, nil
}
