package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookshelf/server/internal/books"
	"github.com/bookshelf/server/internal/model"
	"github.com/bookshelf/server/internal/repo"
)

// maxUploadMemory caps the in-memory portion of multipart parsing; larger
// parts spill to temp files. Per-file size limits are enforced by the
// pipeline before any remote upload.
const maxUploadMemory = 32 << 20

// AdminHandler handles the admin-gated book and category endpoints
type AdminHandler struct {
	bookService     *books.BookService
	categoryService *books.CategoryService
	users           repo.UserRepo
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(bookService *books.BookService, categoryService *books.CategoryService, users repo.UserRepo) *AdminHandler {
	return &AdminHandler{
		bookService:     bookService,
		categoryService: categoryService,
		users:           users,
	}
}

// bookResponse is the book object in API responses
type bookResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	BookSecureURL  string `json:"bookSecureUrl"`
	BookPublicURL  string `json:"bookPublicUrl"`
	CoverSecureURL string `json:"coverSecureUrl"`
	CoverPublicURL string `json:"coverPublicUrl"`
	CategoryID     string `json:"bookCategoryId"`
}

func toBookResponse(b model.Book) bookResponse {
	return bookResponse{
		ID:             b.ID.String(),
		Title:          b.Title,
		Author:         b.Author,
		BookSecureURL:  b.BookSecureURL,
		BookPublicURL:  b.BookPublicURL,
		CoverSecureURL: b.CoverSecureURL,
		CoverPublicURL: b.CoverPublicURL,
		CategoryID:     b.CategoryID.String(),
	}
}

func toBookResponses(list []model.Book) []bookResponse {
	out := make([]bookResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBookResponse(b))
	}
	return out
}

// readFormFile reads one named multipart file fully into memory. A
// missing file is reported as (nil, nil); the caller decides whether it
// was required.
func readFormFile(r *http.Request, field string) (*books.Upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &books.Upload{
		Data:        data,
		ContentType: contentTypeOf(header),
	}, nil
}

func contentTypeOf(header *multipart.FileHeader) string {
	return header.Header.Get("Content-Type")
}

// HandleUploadBook handles POST /api/book-admin/upload-books. Expects
// multipart fields "book" and "cover" plus title, author and category.
func (h *AdminHandler) HandleUploadBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondValidation(w, "invalid multipart form")
		return
	}

	book, err := readFormFile(r, "book")
	if err != nil {
		respondValidation(w, "invalid book file")
		return
	}
	cover, err := readFormFile(r, "cover")
	if err != nil {
		respondValidation(w, "invalid cover file")
		return
	}
	if book == nil || cover == nil {
		respondValidation(w, "both book and cover image are required")
		return
	}

	categoryID, err := uuid.Parse(r.FormValue("category"))
	if err != nil {
		respondValidation(w, "book category is required")
		return
	}

	created, err := h.bookService.Create(r.Context(), r.FormValue("title"), r.FormValue("author"), categoryID, *book, *cover)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "book and cover uploaded successfully",
		"book":    toBookResponse(created),
	})
}

// HandleUpdateBook handles PUT /api/book-admin/update-books/{bookId}.
// Title, author, category and either file may be supplied independently.
func (h *AdminHandler) HandleUpdateBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := uuid.Parse(chi.URLParam(r, "bookId"))
	if err != nil {
		respondValidation(w, "invalid book id")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && err != http.ErrNotMultipart {
		respondValidation(w, "invalid multipart form")
		return
	}

	var book, cover *books.Upload
	if r.MultipartForm != nil {
		if book, err = readFormFile(r, "book"); err != nil {
			respondValidation(w, "invalid book file")
			return
		}
		if cover, err = readFormFile(r, "cover"); err != nil {
			respondValidation(w, "invalid cover file")
			return
		}
	}

	// categoryId may arrive in the form body or the query string.
	categoryID := uuid.Nil
	if raw := r.FormValue("categoryId"); raw != "" {
		categoryID, err = uuid.Parse(raw)
		if err != nil {
			respondValidation(w, "invalid category id")
			return
		}
	}

	updated, err := h.bookService.Update(r.Context(), bookID, r.FormValue("title"), r.FormValue("author"), categoryID, book, cover)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "book updated successfully",
		"book":    toBookResponse(updated),
	})
}

// HandleDeleteBook handles DELETE /api/book-admin/delete-books/{bookId}
func (h *AdminHandler) HandleDeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := uuid.Parse(chi.URLParam(r, "bookId"))
	if err != nil {
		respondValidation(w, "invalid book id")
		return
	}

	if err := h.bookService.Delete(r.Context(), bookID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "book deleted successfully",
	})
}

// categoryRequest is the request body for the category write endpoints
type categoryRequest struct {
	CategoryName string `json:"categoryName"`
}

// categoryResponse is the category object in API responses
type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toCategoryResponse(c model.Category) categoryResponse {
	return categoryResponse{ID: c.ID.String(), Name: c.Name}
}

// HandleCreateCategory handles POST /api/book-admin/create-category
func (h *AdminHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}

	category, err := h.categoryService.Create(r.Context(), req.CategoryName)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"status":   "success",
		"message":  "category created successfully",
		"category": toCategoryResponse(category),
	})
}

// HandleUpdateCategory handles PUT /api/book-admin/update-category/{id}
func (h *AdminHandler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondValidation(w, "invalid category id")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}

	category, err := h.categoryService.Rename(r.Context(), categoryID, req.CategoryName)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"message":  "category updated successfully",
		"category": toCategoryResponse(category),
	})
}

// HandleDeleteCategory handles DELETE /api/book-admin/delete-category/{id}
func (h *AdminHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondValidation(w, "invalid category id")
		return
	}

	if err := h.categoryService.Delete(r.Context(), categoryID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "category deleted successfully",
	})
}

// HandleGetAllCategories handles GET /api/book-admin/get-all-category (public)
func (h *AdminHandler) HandleGetAllCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"message":    "categories retrieved successfully",
		"categories": out,
	})
}

// HandleGetCategory handles GET /api/book-admin/get-single-category/{catId} (public)
func (h *AdminHandler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "catId"))
	if err != nil {
		respondValidation(w, "invalid category id")
		return
	}

	category, err := h.categoryService.Get(r.Context(), categoryID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"message":  "category retrieved successfully",
		"category": toCategoryResponse(category),
	})
}

// adminUserResponse is the user object in admin listings
type adminUserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func toAdminUserResponse(u model.User) adminUserResponse {
	return adminUserResponse{
		ID:    u.ID.String(),
		Name:  u.UserName,
		Email: u.Email,
		Phone: u.PhoneNo,
		Role:  string(u.Role),
	}
}

// HandleGetAllUsers handles GET /api/book-admin/get-all-user
func (h *AdminHandler) HandleGetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]adminUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toAdminUserResponse(u))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"users":  out,
	})
}

// HandleGetUser handles GET /api/book-admin/get-single-user/{userId}
func (h *AdminHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		respondValidation(w, "invalid user id")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"user":   toAdminUserResponse(user),
	})
}
