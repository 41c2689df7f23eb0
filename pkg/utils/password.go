package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidHashFormat = errors.New("invalid encoded hash format")
	ErrPasswordMismatch  = errors.New("incorrect password")
)

// HashPassword returns "base64(salt).base64(argon2id key)".
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is blank")
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", ErrorHandler(err, "failed to generate salt")
	}

	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)

	return base64.StdEncoding.EncodeToString(salt) + "." + base64.StdEncoding.EncodeToString(hash), nil
}

func VerifyPassword(password, encodedHash string) error {
	parts := strings.Split(encodedHash, ".")
	if len(parts) != 2 {
		return ErrInvalidHashFormat
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidHashFormat
	}

	hashedPassword, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return ErrInvalidHashFormat
	}

	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	if len(hash) != len(hashedPassword) {
		return ErrPasswordMismatch
	}

	if subtle.ConstantTimeCompare(hash, hashedPassword) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
