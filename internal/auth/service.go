package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookshelf/server/internal/apperr"
	"github.com/bookshelf/server/internal/mail"
	"github.com/bookshelf/server/internal/model"
	"github.com/bookshelf/server/internal/repo"
)

// AuthService orchestrates registration, login and password recovery
type AuthService struct {
	userRepo  repo.UserRepo
	tokens    *TokenService
	mailer    mail.Sender
	clientURL string
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repo.UserRepo, tokens *TokenService, mailer mail.Sender, clientURL string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		mailer:    mailer,
		clientURL: clientURL,
	}
}

// TokenExpiry reports the configured session lifetime, used for the
// cookie Max-Age.
func (s *AuthService) TokenExpiry() time.Duration {
	return s.tokens.Expiry()
}

// Register creates a new user account
func (s *AuthService) Register(ctx context.Context, name, email, password, phone string) (model.User, error) {
	if name == "" {
		return model.User{}, apperr.E(apperr.ErrValidation, "please enter your name")
	}
	if email == "" {
		return model.User{}, apperr.E(apperr.ErrValidation, "please enter email and password")
	}
	if password == "" {
		return model.User{}, apperr.E(apperr.ErrValidation, "please enter email and password")
	}
	if phone == "" {
		return model.User{}, apperr.E(apperr.ErrValidation, "please enter phone number")
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.userRepo.Create(ctx, name, email, phone, hashed)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and mints a session token
func (s *AuthService) Login(ctx context.Context, email, password string) (model.User, string, error) {
	if email == "" || password == "" {
		return model.User{}, "", apperr.E(apperr.ErrValidation, "please enter email and password")
	}

	user, err := s.userRepo.GetForLogin(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return model.User{}, "", apperr.E(apperr.ErrValidation, "user not found with this email")
		}
		return model.User{}, "", err
	}

	if !VerifyPassword(password, user.Password) {
		return model.User{}, "", apperr.E(apperr.ErrValidation, "invalid password, try again")
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.TokenVersion)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to generate token: %w", err)
	}

	user.Password = ""
	return user, token, nil
}

// SendResetLink generates a reset token, stores its hash with a 10-minute
// expiry and mails the plaintext link. Returns the recipient email.
func (s *AuthService) SendResetLink(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", apperr.E(apperr.ErrValidation, "please enter your email")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	token, hash, err := NewResetToken()
	if err != nil {
		return "", err
	}

	if err := s.userRepo.SetResetToken(ctx, user.ID, hash, time.Now().Add(ResetTokenTTL)); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.clientURL, token)
	body := fmt.Sprintf("You are receiving this email because you (or someone else) requested a password reset for your account.\n\n"+
		"Please click on the following link, or paste this URL into your browser to complete the process:\n\n%s\n\n"+
		"If you did not request this, please ignore this email and your password will remain unchanged.\n", resetURL)

	err = s.mailer.Send(mail.Email{
		Recipient: user.Email,
		Subject:   "Reset Password Link",
		Text:      body,
		HTML:      body,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.ErrUpstream, "failed to send reset email", err)
	}
	return user.Email, nil
}

// ResetPassword consumes a reset token and sets a new password. The stored
// token is single use: the update clears it and bumps tokenVersion.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	if token == "" {
		return "", apperr.E(apperr.ErrValidation, "token is required")
	}
	if newPassword == "" {
		return "", apperr.E(apperr.ErrValidation, "new password is required")
	}

	user, err := s.userRepo.GetByResetToken(ctx, HashResetToken(token), time.Now())
	if err != nil {
		return "", err
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.ResetPassword(ctx, user.ID, hashed); err != nil {
		return "", fmt.Errorf("failed to reset password: %w", err)
	}
	return user.Email, nil
}

// SendOTP generates a 6-digit one-time code, stores it with a 10-minute
// expiry and mails it. Returns the recipient email.
func (s *AuthService) SendOTP(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", apperr.E(apperr.ErrValidation, "please enter your email")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	otp, err := NewOTP()
	if err != nil {
		return "", err
	}
	if err := s.userRepo.SetOTP(ctx, user.ID, otp, time.Now().Add(ResetTokenTTL)); err != nil {
		return "", fmt.Errorf("failed to store OTP: %w", err)
	}

	err = s.mailer.Send(mail.Email{
		Recipient: user.Email,
		Subject:   "Reset Password OTP",
		Text:      fmt.Sprintf("Your One Time Password (OTP) for password reset is: %s", otp),
		HTML: fmt.Sprintf("You are receiving this email because you (or someone else) requested a password reset for your account.\n\n"+
			"Please copy the OTP and paste it on the next app screen to complete the process:\n\n%s\n\n"+
			"If you did not request this, please ignore this email and your password will remain unchanged.\n", otp),
	})
	if err != nil {
		return "", apperr.Wrap(apperr.ErrUpstream, "failed to send OTP email", err)
	}
	return user.Email, nil
}

// ResetPasswordWithOTP verifies the one-time code and sets a new password.
// The code is cleared after use and tokenVersion is bumped.
func (s *AuthService) ResetPasswordWithOTP(ctx context.Context, email, otp, newPassword string) (string, error) {
	if email == "" || otp == "" {
		return "", apperr.E(apperr.ErrValidation, "email and otp are required")
	}
	if newPassword == "" {
		return "", apperr.E(apperr.ErrValidation, "new password is required")
	}

	user, err := s.userRepo.GetOTP(ctx, email)
	if err != nil {
		return "", err
	}
	if user.OTP == nil || *user.OTP != otp {
		return "", apperr.E(apperr.ErrValidation, "invalid OTP")
	}
	if user.OTPExpires == nil || time.Now().After(*user.OTPExpires) {
		return "", apperr.E(apperr.ErrValidation, "invalid OTP")
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.ResetPassword(ctx, user.ID, hashed); err != nil {
		return "", fmt.Errorf("failed to reset password: %w", err)
	}
	return user.Email, nil
}

// UpdateEmail changes the account email after re-verifying the current
// password. The stored tokenVersion is bumped, so the session that made
// the request is also invalidated.
func (s *AuthService) UpdateEmail(ctx context.Context, userID uuid.UUID, currentPassword, newEmail string) (string, error) {
	if currentPassword == "" || newEmail == "" {
		return "", apperr.E(apperr.ErrValidation, "current password and new email are required")
	}

	user, err := s.userRepo.GetWithPassword(ctx, userID)
	if err != nil {
		return "", err
	}
	if !VerifyPassword(currentPassword, user.Password) {
		return "", apperr.E(apperr.ErrValidation, "incorrect password")
	}

	if err := s.userRepo.UpdateEmail(ctx, userID, newEmail); err != nil {
		return "", err
	}
	return newEmail, nil
}
