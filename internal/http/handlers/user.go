package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookshelf/server/internal/auth"
	"github.com/bookshelf/server/internal/books"
	"github.com/bookshelf/server/internal/middleware"
	"github.com/bookshelf/server/internal/model"
	"github.com/bookshelf/server/internal/repo"
)

// UserHandler handles the authenticated profile and book-reading endpoints
type UserHandler struct {
	users       repo.UserRepo
	bookService *books.BookService
	authService *auth.AuthService
	production  bool
}

// NewUserHandler creates a new user handler
func NewUserHandler(users repo.UserRepo, bookService *books.BookService, authService *auth.AuthService, production bool) *UserHandler {
	return &UserHandler{
		users:       users,
		bookService: bookService,
		authService: authService,
		production:  production,
	}
}

// updateUserRequest is the request body for PUT /api/user/update-user
type updateUserRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// HandleUpdateUser handles PUT /api/user/update-user
func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"status": "error", "message": "user id not found, login again"})
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	// Only supplied fields change; the rest keep their stored values.
	name := user.UserName
	phone := user.PhoneNo
	if req.Name != "" {
		name = req.Name
	}
	if req.Phone != "" {
		phone = req.Phone
	}

	updated, err := h.users.UpdateProfile(r.Context(), userID, name, phone)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "user updated successfully",
		"name":    updated.UserName,
		"phone":   updated.PhoneNo,
	})
}

// updateEmailRequest is the request body for PUT /api/user/update-email
type updateEmailRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewEmail        string `json:"newEmail"`
}

// HandleUpdateEmail handles PUT /api/user/update-email. A successful
// change clears the session cookie; the bumped tokenVersion invalidates
// every outstanding session anyway.
func (h *UserHandler) HandleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"status": "error", "message": "user id not found, login again"})
		return
	}

	var req updateEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}

	email, err := h.authService.UpdateEmail(r.Context(), userID, req.CurrentPassword, req.NewEmail)
	if err != nil {
		respondError(w, err)
		return
	}

	clearSessionCookie(w, h.production)
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "email updated successfully",
		"email":   email,
	})
}

// profileResponse is the user object for GET /api/user/get-user-data
type profileResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// HandleGetProfile handles GET /api/user/get-user-data
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"status": "error", "message": "user id not found, login again"})
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"user": profileResponse{
			ID:    user.ID.String(),
			Name:  user.UserName,
			Email: user.Email,
			Phone: user.PhoneNo,
		},
	})
}

// HandleGetAllBooks handles GET /api/user/get-all-books
func (h *UserHandler) HandleGetAllBooks(w http.ResponseWriter, r *http.Request) {
	allBooks, err := h.bookService.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"allbooks": toBookResponses(allBooks),
	})
}

// HandleGetBook handles GET /api/user/books/{bookId}
func (h *UserHandler) HandleGetBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := uuid.Parse(chi.URLParam(r, "bookId"))
	if err != nil {
		respondValidation(w, "invalid book id")
		return
	}

	book, err := h.bookService.Get(r.Context(), bookID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"book":   toBookResponse(book),
	})
}

// saveContactsRequest is the request body for POST /api/user/save-contacts
type saveContactsRequest struct {
	Contacts []model.Contact `json:"contacts"`
}

// HandleSaveContacts handles POST /api/user/save-contacts. Incoming
// contacts are appended, deduplicated by their first phone number.
func (h *UserHandler) HandleSaveContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"status": "error", "message": "user id not found, login again"})
		return
	}

	var req saveContactsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}
	if len(req.Contacts) == 0 {
		respondValidation(w, "no contacts provided")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	merged := mergeContacts(user.Contacts, req.Contacts)
	if err := h.users.UpdateContacts(r.Context(), userID, merged); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"message":  "contacts saved successfully",
		"contacts": merged,
	})
}

// mergeContacts appends new entries whose first phone number is not
// already present in any existing contact.
func mergeContacts(existing, incoming []model.Contact) []model.Contact {
	merged := append([]model.Contact{}, existing...)
	for _, contact := range incoming {
		if len(contact.PhoneNumbers) == 0 {
			continue
		}
		if !hasPhoneNumber(merged, contact.PhoneNumbers[0]) {
			merged = append(merged, contact)
		}
	}
	return merged
}

func hasPhoneNumber(contacts []model.Contact, phone string) bool {
	for _, c := range contacts {
		for _, p := range c.PhoneNumbers {
			if p == phone {
				return true
			}
		}
	}
	return false
}
