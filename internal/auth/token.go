package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bookshelf/server/internal/apperr"
)

// SessionCookie is the name of the HTTP cookie carrying the session token.
const SessionCookie = "user_cred"

// Claims represents the session token claims. TokenVersion is the
// revocation counter: verification alone does not make a session live,
// the gate must also match it against the stored user record.
type Claims struct {
	UserID       uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	TokenVersion int       `json:"tokenVersion"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies signed session tokens
type TokenService struct {
	secret []byte
	expiry time.Duration
}

// NewTokenService creates a new token service. A missing signing secret is
// a configuration error and fails construction.
func NewTokenService(secret string, expiry time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT signing secret is not configured")
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), expiry: expiry}, nil
}

// Issue creates a signed session token carrying identity and tokenVersion
func (s *TokenService) Issue(userID uuid.UUID, email string, tokenVersion int) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:       userID,
		Email:        email,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses and validates a session token. Every failure mode
// (missing, malformed, wrong method, expired) surfaces as the same
// invalid-token class so callers leak nothing about the cause.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperr.E(apperr.ErrUnauthenticated, "invalid or expired token")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUnauthenticated, "invalid or expired token", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.E(apperr.ErrUnauthenticated, "invalid or expired token")
	}
	return claims, nil
}

// Expiry returns the configured token lifetime
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}
