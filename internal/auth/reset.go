package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

const (
	// ResetTokenTTL bounds both the link token and the OTP.
	ResetTokenTTL = 10 * time.Minute

	resetTokenBytes = 32
)

// NewResetToken generates a high-entropy reset token. The plaintext goes
// out-of-band to the user; only the hash is ever stored.
func NewResetToken() (plaintext, hash string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	plaintext = hex.EncodeToString(buf)
	return plaintext, HashResetToken(plaintext), nil
}

// HashResetToken returns the SHA-256 hex digest used for storage and lookup
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewOTP generates a 6-digit numeric one-time code
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
