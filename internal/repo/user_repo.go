package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bookshelf/server/internal/apperr"
	"github.com/bookshelf/server/internal/model"
)

// UserRepo defines the interface for user repository operations.
// Default reads never return the password hash; the credential paths
// (GetForLogin, GetWithPassword, GetByResetToken, GetOTP) do.
type UserRepo interface {
	Create(ctx context.Context, name, email, phone, passwordHash string) (model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetForLogin(ctx context.Context, email string) (model.User, error)
	GetWithPassword(ctx context.Context, id uuid.UUID) (model.User, error)
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (model.User, error)
	GetOTP(ctx context.Context, email string) (model.User, error)
	GetAll(ctx context.Context) ([]model.User, error)
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error
	SetOTP(ctx context.Context, id uuid.UUID, otp string, expires time.Time) error
	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, name, phone string) (model.User, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdateContacts(ctx context.Context, id uuid.UUID, contacts []model.Contact) error
}

type userRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo instance
func NewUserRepo(db *sql.DB) UserRepo {
	return &userRepo{db: db}
}

// defaultUserColumns is the read set for profile-style queries; the
// password hash and recovery fields are excluded on purpose.
const defaultUserColumns = `id, user_name, email, phone_no, role, token_version, contacts, photos, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		user     model.User
		idStr    string
		contacts []byte
		photos   []byte
	)
	err := row.Scan(
		&idStr,
		&user.UserName,
		&user.Email,
		&user.PhoneNo,
		&user.Role,
		&user.TokenVersion,
		&contacts,
		&photos,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	user.ID, err = uuid.Parse(idStr)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to parse user ID: %w", err)
	}
	if err := json.Unmarshal(contacts, &user.Contacts); err != nil {
		return model.User{}, fmt.Errorf("failed to decode contacts: %w", err)
	}
	if err := json.Unmarshal(photos, &user.Photos); err != nil {
		return model.User{}, fmt.Errorf("failed to decode photos: %w", err)
	}
	return user, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) (*pq.Error, bool) {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return pqErr, true
	}
	return nil, false
}

// Create inserts a new user. Duplicate email or phone surfaces as a
// conflict naming the offending field.
func (r *userRepo) Create(ctx context.Context, name, email, phone, passwordHash string) (model.User, error) {
	query := `
		INSERT INTO users (user_name, email, phone_no, password)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + defaultUserColumns
	row := r.db.QueryRowContext(ctx, query, name, email, phone, passwordHash)
	user, err := scanUser(row)
	if err != nil {
		if pqErr, ok := isUniqueViolation(err); ok {
			if pqErr.Constraint == "users_phone_no_key" {
				return model.User{}, apperr.Wrap(apperr.ErrConflict, "phone number already exists, please use a different one", err)
			}
			return model.User{}, apperr.Wrap(apperr.ErrConflict, "email already exists, please use a different one", err)
		}
		return model.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + defaultUserColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, apperr.Wrap(apperr.ErrNotFound, "user not found", err)
		}
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *userRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + defaultUserColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, apperr.Wrap(apperr.ErrNotFound, "no user found with this email", err)
		}
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetForLogin retrieves a user by email including the password hash
func (r *userRepo) GetForLogin(ctx context.Context, email string) (model.User, error) {
	query := `
		SELECT id, user_name, email, phone_no, password, role, token_version
		FROM users
		WHERE email = $1
	`
	var user model.User
	var idStr string
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&idStr,
		&user.UserName,
		&user.Email,
		&user.PhoneNo,
		&user.Password,
		&user.Role,
		&user.TokenVersion,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, apperr.Wrap(apperr.ErrNotFound, "no user found with this email", err)
		}
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	user.ID, err = uuid.Parse(idStr)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to parse user ID: %w", err)
	}
	return user, nil
}

// GetWithPassword retrieves a user by ID including the password hash
func (r *userRepo) GetWithPassword(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `
		SELECT id, user_name, email, phone_no, password, role, token_version
		FROM users
		WHERE id = $1
	`
	var user model.User
	var idStr string
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&idStr,
		&user.UserName,
		&user.Email,
		&user.PhoneNo,
		&user.Password,
		&user.Role,
		&user.TokenVersion,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, apperr.Wrap(apperr.ErrNotFound, "user not found", err)
		}
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	user.ID, err = uuid.Parse(idStr)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to parse user ID: %w", err)
	}
	return user, nil
}

// GetByResetToken retrieves the user holding an unexpired reset token hash
func (r *userRepo) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (model.User, error) {
	query := `
		SELECT ` + defaultUserColumns + `
		FROM users
		WHERE reset_password_token = $1 AND reset_password_expires > $2
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, tokenHash, now))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, apperr.Wrap(apperr.ErrUnauthenticated, "invalid or expired token", err)
		}
		return model.User{}, fmt.Errorf("failed to query user by reset token: %w", err)
	}
	return user, nil
}

// GetOTP retrieves a user by email including the OTP fields
func (r *userRepo) GetOTP(ctx context.Context, email string) (model.User, error) {
	query := `
		SELECT id, user_name, email, otp, otp_expires, token_version
		FROM users
		WHERE email = $1
	`
	var user model.User
	var idStr string
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&idStr,
		&user.UserName,
		&user.Email,
		&user.OTP,
		&user.OTPExpires,
		&user.TokenVersion,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, apperr.Wrap(apperr.ErrNotFound, "no user found with this email", err)
		}
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	user.ID, err = uuid.Parse(idStr)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to parse user ID: %w", err)
	}
	return user, nil
}

// GetAll retrieves all users
func (r *userRepo) GetAll(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + defaultUserColumns + ` FROM users ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// SetResetToken stores the hash of a password reset token and its expiry
func (r *userRepo) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error {
	query := `
		UPDATE users
		SET reset_password_token = $2, reset_password_expires = $3, updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id.String(), tokenHash, expires)
}

// SetOTP stores a one-time password and its expiry
func (r *userRepo) SetOTP(ctx context.Context, id uuid.UUID, otp string, expires time.Time) error {
	query := `
		UPDATE users
		SET otp = $2, otp_expires = $3, updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id.String(), otp, expires)
}

// ResetPassword replaces the password hash, clears all recovery state and
// bumps token_version so every outstanding session is invalidated.
func (r *userRepo) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password = $2,
		    reset_password_token = NULL,
		    reset_password_expires = NULL,
		    otp = NULL,
		    otp_expires = NULL,
		    token_version = token_version + 1,
		    updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id.String(), passwordHash)
}

// UpdateProfile updates the display name and phone number
func (r *userRepo) UpdateProfile(ctx context.Context, id uuid.UUID, name, phone string) (model.User, error) {
	query := `
		UPDATE users
		SET user_name = $2, phone_no = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + defaultUserColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id.String(), name, phone))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, apperr.Wrap(apperr.ErrNotFound, "user not found", err)
		}
		if _, ok := isUniqueViolation(err); ok {
			return model.User{}, apperr.Wrap(apperr.ErrConflict, "phone number already exists, please use a different one", err)
		}
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdateEmail changes the email and bumps token_version; sessions issued
// for the old identity stop verifying against the stored counter.
func (r *userRepo) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	query := `
		UPDATE users
		SET email = $2, token_version = token_version + 1, updated_at = now()
		WHERE id = $1
	`
	err := r.exec(ctx, query, id.String(), email)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return apperr.Wrap(apperr.ErrConflict, "email already exists, please use a different one", err)
		}
	}
	return err
}

// UpdateContacts replaces the stored contact list
func (r *userRepo) UpdateContacts(ctx context.Context, id uuid.UUID, contacts []model.Contact) error {
	data, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("failed to encode contacts: %w", err)
	}
	query := `
		UPDATE users
		SET contacts = $2, updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id.String(), data)
}

func (r *userRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return apperr.E(apperr.ErrNotFound, "user not found")
	}
	return nil
}
