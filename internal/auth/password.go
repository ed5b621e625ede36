package auth

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/bookshelf/server/internal/apperr"
)

// bcryptCost is the fixed work factor for password hashing.
const bcryptCost = 12

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", apperr.E(apperr.ErrValidation, "password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrValidation, "failed to hash password", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored hash.
// It fails closed: missing inputs or internal hashing errors report false
// and are logged, never propagated.
func VerifyPassword(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Printf("password comparison error: %v", err)
		}
		return false
	}
	return true
}
