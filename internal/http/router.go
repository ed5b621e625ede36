package http

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bookshelf/server/internal/auth"
	"github.com/bookshelf/server/internal/http/handlers"
	"github.com/bookshelf/server/internal/middleware"
	"github.com/bookshelf/server/internal/repo"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	adminHandler *handlers.AdminHandler,
	tokens *auth.TokenService,
	userRepo repo.UserRepo,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	healthHandler := handlers.NewHealthHandler()
	r.Get("/health", healthHandler.ServeHTTP)

	authenticate := middleware.Authenticate(tokens, userRepo)
	requireAdmin := middleware.RequireAdmin(userRepo)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.Post("/send-link", authHandler.HandleSendResetLink)
		r.Post("/reset-password", authHandler.HandleResetPassword)
		r.Post("/mobile-forgot-password", authHandler.HandleSendOTP)
		r.Post("/mobile-reset-password", authHandler.HandleResetPasswordWithOTP)
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(authenticate)
		r.Put("/update-user", userHandler.HandleUpdateUser)
		r.Put("/update-email", userHandler.HandleUpdateEmail)
		r.Get("/get-user-data", userHandler.HandleGetProfile)
		r.Get("/get-all-books", userHandler.HandleGetAllBooks)
		r.Get("/books/{bookId}", userHandler.HandleGetBook)
		r.Post("/save-contacts", userHandler.HandleSaveContacts)
	})

	r.Route("/api/book-admin", func(r chi.Router) {
		// Category reads are public.
		r.Get("/get-all-category", adminHandler.HandleGetAllCategories)
		r.Get("/get-single-category/{catId}", adminHandler.HandleGetCategory)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(requireAdmin)
			r.Post("/upload-books", adminHandler.HandleUploadBook)
			r.Put("/update-books/{bookId}", adminHandler.HandleUpdateBook)
			r.Delete("/delete-books/{bookId}", adminHandler.HandleDeleteBook)
			r.Get("/get-all-user", adminHandler.HandleGetAllUsers)
			r.Get("/get-single-user/{userId}", adminHandler.HandleGetUser)
			r.Post("/create-category", adminHandler.HandleCreateCategory)
			r.Put("/update-category/{id}", adminHandler.HandleUpdateCategory)
			r.Delete("/delete-category/{id}", adminHandler.HandleDeleteCategory)
		})
	})

	return r
}
