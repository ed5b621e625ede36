package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelf/server/internal/apperr"
	"github.com/bookshelf/server/internal/mail"
	"github.com/bookshelf/server/internal/model"
)

// fakeUserRepo is an in-memory repo.UserRepo for service tests.
type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, name, email, phone, passwordHash string) (model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return model.User{}, apperr.E(apperr.ErrConflict, "email already exists, please use a different one")
		}
		if u.PhoneNo == phone {
			return model.User{}, apperr.E(apperr.ErrConflict, "phone number already exists, please use a different one")
		}
	}
	u := &model.User{
		ID:       uuid.New(),
		UserName: name,
		Email:    email,
		PhoneNo:  phone,
		Password: passwordHash,
		Role:     model.RoleUser,
	}
	r.users[u.ID] = u
	return r.public(u), nil
}

func (r *fakeUserRepo) public(u *model.User) model.User {
	out := *u
	out.Password = ""
	out.ResetPasswordToken = nil
	out.ResetPasswordExpires = nil
	out.OTP = nil
	out.OTPExpires = nil
	return out
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return model.User{}, apperr.E(apperr.ErrNotFound, "user not found")
	}
	return r.public(u), nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return r.public(u), nil
		}
	}
	return model.User{}, apperr.E(apperr.ErrNotFound, "no user found with this email")
}

func (r *fakeUserRepo) GetForLogin(ctx context.Context, email string) (model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, apperr.E(apperr.ErrNotFound, "no user found with this email")
}

func (r *fakeUserRepo) GetWithPassword(ctx context.Context, id uuid.UUID) (model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return model.User{}, apperr.E(apperr.ErrNotFound, "user not found")
	}
	return *u, nil
}

func (r *fakeUserRepo) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (model.User, error) {
	for _, u := range r.users {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == tokenHash &&
			u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(now) {
			return r.public(u), nil
		}
	}
	return model.User{}, apperr.E(apperr.ErrUnauthenticated, "invalid or expired token")
}

func (r *fakeUserRepo) GetOTP(ctx context.Context, email string) (model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			out := r.public(u)
			out.OTP = u.OTP
			out.OTPExpires = u.OTPExpires
			return out, nil
		}
	}
	return model.User{}, apperr.E(apperr.ErrNotFound, "no user found with this email")
}

func (r *fakeUserRepo) GetAll(ctx context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, r.public(u))
	}
	return out, nil
}

func (r *fakeUserRepo) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return apperr.E(apperr.ErrNotFound, "user not found")
	}
	u.ResetPasswordToken = &tokenHash
	u.ResetPasswordExpires = &expires
	return nil
}

func (r *fakeUserRepo) SetOTP(ctx context.Context, id uuid.UUID, otp string, expires time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return apperr.E(apperr.ErrNotFound, "user not found")
	}
	u.OTP = &otp
	u.OTPExpires = &expires
	return nil
}

func (r *fakeUserRepo) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return apperr.E(apperr.ErrNotFound, "user not found")
	}
	u.Password = passwordHash
	u.ResetPasswordToken = nil
	u.ResetPasswordExpires = nil
	u.OTP = nil
	u.OTPExpires = nil
	u.TokenVersion++
	return nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, name, phone string) (model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return model.User{}, apperr.E(apperr.ErrNotFound, "user not found")
	}
	u.UserName = name
	u.PhoneNo = phone
	return r.public(u), nil
}

func (r *fakeUserRepo) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	u, ok := r.users[id]
	if !ok {
		return apperr.E(apperr.ErrNotFound, "user not found")
	}
	u.Email = email
	u.TokenVersion++
	return nil
}

func (r *fakeUserRepo) UpdateContacts(ctx context.Context, id uuid.UUID, contacts []model.Contact) error {
	u, ok := r.users[id]
	if !ok {
		return apperr.E(apperr.ErrNotFound, "user not found")
	}
	u.Contacts = contacts
	return nil
}

// fakeMailer captures outbound mail instead of sending it.
type fakeMailer struct {
	sent []mail.Email
	err  error
}

func (m *fakeMailer) Send(e mail.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, e)
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo, *fakeMailer) {
	t.Helper()
	tokens, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	users := newFakeUserRepo()
	mailer := &fakeMailer{}
	return NewAuthService(users, tokens, mailer, "https://app.example.com"), users, mailer
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService(t)

	user, err := svc.Register(ctx, "Ada Lovelace", "ada@example.com", "p4ssword", "1234567890")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Empty(t, user.Password, "registration must not return the password hash")

	logged, token, err := svc.Login(ctx, "ada@example.com", "p4ssword")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)
	assert.Empty(t, logged.Password)

	_, _, err = svc.Login(ctx, "ada@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "p4ssword", "1234567890")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "ada@example.com", "p4ssword", "0987654321")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestAuthService_ResetLinkFlow(t *testing.T) {
	ctx := context.Background()
	svc, users, mailer := newTestAuthService(t)

	user, err := svc.Register(ctx, "Ada", "ada@example.com", "old-password", "1234567890")
	require.NoError(t, err)

	_, err = svc.SendResetLink(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ada@example.com", mailer.sent[0].Recipient)

	// Only the hash may be stored.
	stored := users.users[user.ID]
	require.NotNil(t, stored.ResetPasswordToken)
	assert.NotContains(t, mailer.sent[0].Text, *stored.ResetPasswordToken)

	// Recover the plaintext token from the mailed link.
	link := mailer.sent[0].Text
	idx := len(link) - 1
	for idx >= 0 && link[idx] != '/' {
		idx--
	}
	token := link[idx+1 : idx+1+64]
	require.Equal(t, HashResetToken(token), *stored.ResetPasswordToken)

	versionBefore := stored.TokenVersion
	_, err = svc.ResetPassword(ctx, token, "new-password")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ada@example.com", "new-password")
	require.NoError(t, err)
	assert.Equal(t, versionBefore+1, stored.TokenVersion, "reset must bump tokenVersion")

	// Single use: the second attempt is rejected.
	_, err = svc.ResetPassword(ctx, token, "another-password")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))
}

func TestAuthService_ResetTokenExpiry(t *testing.T) {
	ctx := context.Background()
	svc, users, mailer := newTestAuthService(t)

	user, err := svc.Register(ctx, "Ada", "ada@example.com", "old-password", "1234567890")
	require.NoError(t, err)

	_, err = svc.SendResetLink(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	// Force the stored expiry into the past.
	stored := users.users[user.ID]
	expired := time.Now().Add(-time.Minute)
	stored.ResetPasswordExpires = &expired

	link := mailer.sent[0].Text
	idx := len(link) - 1
	for idx >= 0 && link[idx] != '/' {
		idx--
	}
	token := link[idx+1 : idx+1+64]

	_, err = svc.ResetPassword(ctx, token, "new-password")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))
}

func TestAuthService_OTPFlow(t *testing.T) {
	ctx := context.Background()
	svc, users, mailer := newTestAuthService(t)

	user, err := svc.Register(ctx, "Ada", "ada@example.com", "old-password", "1234567890")
	require.NoError(t, err)

	_, err = svc.SendOTP(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	stored := users.users[user.ID]
	require.NotNil(t, stored.OTP)
	otp := *stored.OTP
	assert.Contains(t, mailer.sent[0].Text, otp)

	wrong := "000000"
	if wrong == otp {
		wrong = "000001"
	}
	_, err = svc.ResetPasswordWithOTP(ctx, "ada@example.com", wrong, "new-password")
	require.Error(t, err, "wrong OTP must be rejected")

	_, err = svc.ResetPasswordWithOTP(ctx, "ada@example.com", otp, "new-password")
	require.NoError(t, err)
	assert.Nil(t, stored.OTP, "OTP must be cleared after use")

	_, _, err = svc.Login(ctx, "ada@example.com", "new-password")
	require.NoError(t, err)

	// A second use of the same code is rejected.
	_, err = svc.ResetPasswordWithOTP(ctx, "ada@example.com", otp, "again")
	require.Error(t, err)
}

func TestAuthService_OTPExpiry(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestAuthService(t)

	user, err := svc.Register(ctx, "Ada", "ada@example.com", "old-password", "1234567890")
	require.NoError(t, err)

	_, err = svc.SendOTP(ctx, "ada@example.com")
	require.NoError(t, err)

	stored := users.users[user.ID]
	require.NotNil(t, stored.OTP)
	expired := time.Now().Add(-time.Minute)
	stored.OTPExpires = &expired

	_, err = svc.ResetPasswordWithOTP(ctx, "ada@example.com", *stored.OTP, "new-password")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestAuthService_MailFailureIsUpstream(t *testing.T) {
	ctx := context.Background()
	svc, _, mailer := newTestAuthService(t)
	mailer.err = errors.New("smtp connection refused")

	_, err := svc.Register(ctx, "Ada", "ada@example.com", "p4ssword", "1234567890")
	require.NoError(t, err)

	_, err = svc.SendResetLink(ctx, "ada@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUpstream))
}

func TestAuthService_UpdateEmail(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestAuthService(t)

	user, err := svc.Register(ctx, "Ada", "ada@example.com", "p4ssword", "1234567890")
	require.NoError(t, err)

	_, err = svc.UpdateEmail(ctx, user.ID, "wrong", "new@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	versionBefore := users.users[user.ID].TokenVersion
	email, err := svc.UpdateEmail(ctx, user.ID, "p4ssword", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", email)
	assert.Equal(t, versionBefore+1, users.users[user.ID].TokenVersion)
}
