package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

// SignToken issues an HS256 token carrying uid, user and role claims.
// JWT_EXPIRES_IN is a Go duration string and defaults to 24h.
func SignToken(userID int, username, role string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", ErrMissingJWTSecret
	}

	ttl, err := time.ParseDuration(GetEnv("JWT_EXPIRES_IN", "24h"))
	if err != nil {
		ttl = 24 * time.Hour
	}

	claims := jwt.MapClaims{
		"uid":  userID,
		"user": username,
		"role": role,
		"exp":  time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", ErrorHandler(err, "error signing token")
	}
	return signed, nil
}
