package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelf/server/internal/apperr"
	"github.com/bookshelf/server/internal/auth"
	"github.com/bookshelf/server/internal/model"
	"github.com/bookshelf/server/internal/repo"
)

// stubUserRepo overrides GetByID; middleware only needs that path.
type stubUserRepo struct {
	repo.UserRepo
	users map[uuid.UUID]model.User
}

func (r *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return model.User{}, apperr.E(apperr.ErrNotFound, "user not found")
	}
	return u, nil
}

func newTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	return tokens
}

func okHandler(called *bool, gotID *uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if id, ok := UserID(r.Context()); ok {
			*gotID = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	tokens := newTokens(t)
	user := model.User{ID: uuid.New(), Email: "ada@example.com", Role: model.RoleUser, TokenVersion: 3}
	users := &stubUserRepo{users: map[uuid.UUID]model.User{user.ID: user}}

	validToken, err := tokens.Issue(user.ID, user.Email, user.TokenVersion)
	require.NoError(t, err)
	staleToken, err := tokens.Issue(user.ID, user.Email, user.TokenVersion-1)
	require.NoError(t, err)
	unknownToken, err := tokens.Issue(uuid.New(), "ghost@example.com", 0)
	require.NoError(t, err)

	cases := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
		wantCalled bool
	}{
		{
			name:       "missing cookie",
			cookie:     nil,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty cookie value",
			cookie:     &http.Cookie{Name: auth.SessionCookie, Value: ""},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed token",
			cookie:     &http.Cookie{Name: auth.SessionCookie, Value: "not-a-jwt"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "stale tokenVersion",
			cookie:     &http.Cookie{Name: auth.SessionCookie, Value: staleToken},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unknown user",
			cookie:     &http.Cookie{Name: auth.SessionCookie, Value: unknownToken},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "valid session",
			cookie:     &http.Cookie{Name: auth.SessionCookie, Value: validToken},
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			var gotID uuid.UUID
			handler := Authenticate(tokens, users)(okHandler(&called, &gotID))

			req := httptest.NewRequest(http.MethodGet, "/api/user/get-profile", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantCalled, called)
			if tc.wantCalled {
				assert.Equal(t, user.ID, gotID, "the resolved identity is attached to the context")
			}
			if !tc.wantCalled {
				assert.Contains(t, rec.Body.String(), `"status":"error"`)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	admin := model.User{ID: uuid.New(), Email: "root@example.com", Role: model.RoleAdmin}
	regular := model.User{ID: uuid.New(), Email: "ada@example.com", Role: model.RoleUser}
	users := &stubUserRepo{users: map[uuid.UUID]model.User{
		admin.ID:   admin,
		regular.ID: regular,
	}}

	cases := []struct {
		name       string
		userID     *uuid.UUID
		wantStatus int
		wantCalled bool
	}{
		{
			name:       "no identity in context",
			userID:     nil,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "deleted account",
			userID: func() *uuid.UUID {
				id := uuid.New()
				return &id
			}(),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "regular user",
			userID:     &regular.ID,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin",
			userID:     &admin.ID,
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			var gotID uuid.UUID
			handler := RequireAdmin(users)(okHandler(&called, &gotID))

			req := httptest.NewRequest(http.MethodPost, "/api/book-admin/add-category", nil)
			if tc.userID != nil {
				ctx := context.WithValue(req.Context(), userIDKey, *tc.userID)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantCalled, called)
		})
	}
}
