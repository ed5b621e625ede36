package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/bookshelf/server/internal/auth"
)

// AuthHandler handles the authentication and password recovery endpoints
type AuthHandler struct {
	authService *auth.AuthService
	production  bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.AuthService, production bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		production:  production,
	}
}

// registerRequest is the request body for POST /api/auth/register
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// HandleRegister handles POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}

	if _, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password, req.Phone); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "user registered successfully",
	})
}

// loginRequest is the request body for POST /api/auth/login
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginUser is the user object in the login response
type loginUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// HandleLogin handles POST /api/auth/login. The session token is set as a
// cookie and echoed in the body for non-cookie clients.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	setSessionCookie(w, token, h.authService.TokenExpiry(), h.production)
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "user logged in successfully",
		"user": loginUser{
			ID:    user.ID.String(),
			Name:  user.UserName,
			Email: user.Email,
			Token: token,
		},
	})
}

// HandleLogout handles POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, h.production)
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "user logged out successfully",
	})
}

// emailRequest is the request body for the two forgot-password endpoints
type emailRequest struct {
	Email string `json:"email"`
}

// HandleSendResetLink handles POST /api/auth/send-link
func (h *AuthHandler) HandleSendResetLink(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}

	email, err := h.authService.SendResetLink(r.Context(), req.Email)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "password reset link sent to your email",
		"email":   email,
	})
}

// resetPasswordRequest is the request body for POST /api/auth/reset-password
type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// HandleResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}

	email, err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "password reset successfully",
		"email":   email,
	})
}

// HandleSendOTP handles POST /api/auth/mobile-forgot-password
func (h *AuthHandler) HandleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}

	email, err := h.authService.SendOTP(r.Context(), req.Email)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "password reset otp sent to your email",
		"email":   email,
	})
}

// otpResetRequest is the request body for POST /api/auth/mobile-reset-password
type otpResetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// HandleResetPasswordWithOTP handles POST /api/auth/mobile-reset-password
func (h *AuthHandler) HandleResetPasswordWithOTP(w http.ResponseWriter, r *http.Request) {
	var req otpResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}

	email, err := h.authService.ResetPasswordWithOTP(r.Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "password reset successfully",
		"email":   email,
	})
}
