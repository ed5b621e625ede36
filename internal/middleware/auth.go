package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/bookshelf/server/internal/apperr"
	"github.com/bookshelf/server/internal/auth"
	"github.com/bookshelf/server/internal/model"
	"github.com/bookshelf/server/internal/repo"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	userEmailKey contextKey = "user_email"
)

// Authenticate extracts the session cookie, verifies the token and checks
// the embedded tokenVersion against the stored user record. On success the
// resolved identity (id, email) is attached to the request context.
func Authenticate(tokens *auth.TokenService, users repo.UserRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil || cookie.Value == "" {
				respondWithError(w, http.StatusUnauthorized, "access denied, no token provided")
				return
			}

			claims, err := tokens.Verify(cookie.Value)
			if err != nil {
				respondWithError(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil || user.TokenVersion != claims.TokenVersion {
				respondWithError(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, user.ID)
			ctx = context.WithValue(ctx, userEmailKey, user.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route on the admin role. It must run after
// Authenticate; the user record is re-read so a revoked or deleted account
// cannot slip through between the two stages.
func RequireAdmin(users repo.UserRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserID(r.Context())
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "access denied, no token provided")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					respondWithError(w, http.StatusNotFound, "user not found")
					return
				}
				respondWithError(w, http.StatusInternalServerError, "server error")
				return
			}

			if user.Role != model.RoleAdmin {
				respondWithError(w, http.StatusForbidden, "access denied, you are not an admin")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserID extracts the authenticated user's ID from the request context
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// UserEmail extracts the authenticated user's email from the request context
func UserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(userEmailKey).(string)
	return email, ok
}

// respondWithError sends a JSON error response
func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": message})
}
