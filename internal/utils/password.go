package utils

import (
	"crypto/sha256"

	"github.com/openboard-io/openboard/backend/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt silently ignores input beyond 72 bytes; we truncate explicitly so
// the behavior is visible in logs and testable.
const bcryptMaxPasswordBytes = 72

func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxPasswordBytes {
		logger.Warn().
			Int("original_bytes", len(b)).
			Int("max_bytes", bcryptMaxPasswordBytes).
			Msg("password exceeds bcrypt byte limit, truncating")
		b = b[:bcryptMaxPasswordBytes]
	}
	return b
}

// HashPassword hashes a user-chosen password with bcrypt. Inputs longer than
// 72 bytes are truncated first.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(truncatePassword(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword verifies a password against a stored bcrypt hash. It never
// returns an error: a malformed stored hash is logged and treated as a
// mismatch so callers handle all failures the same way.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), truncatePassword(password))
	if err != nil {
		if err != bcrypt.ErrMismatchedHashAndPassword {
			logger.Warn().Err(err).Msg("stored password hash could not be compared")
		}
		return false
	}
	return true
}

// HashToken hashes a long opaque token (e.g. a refresh JWT). The token is
// SHA-256 digested first so high-entropy material past bcrypt's 72-byte cap
// is never silently discarded, then the 32-byte digest is bcrypt-hashed.
func HashToken(token string) (string, error) {
	digest := sha256.Sum256([]byte(token))
	hashed, err := bcrypt.GenerateFromPassword(digest[:], bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckTokenHash is the verification counterpart of HashToken.
func CheckTokenHash(token, hash string) bool {
	digest := sha256.Sum256([]byte(token))
	err := bcrypt.CompareHashAndPassword([]byte(hash), digest[:])
	if err != nil {
		if err != bcrypt.ErrMismatchedHashAndPassword {
			logger.Warn().Err(err).Msg("stored token hash could not be compared")
		}
		return false
	}
	return true
}
