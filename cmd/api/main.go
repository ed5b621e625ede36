package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/bookshelf/server/internal/auth"
	"github.com/bookshelf/server/internal/books"
	"github.com/bookshelf/server/internal/config"
	"github.com/bookshelf/server/internal/db"
	httphandler "github.com/bookshelf/server/internal/http"
	"github.com/bookshelf/server/internal/http/handlers"
	"github.com/bookshelf/server/internal/mail"
	"github.com/bookshelf/server/internal/repo"
	"github.com/bookshelf/server/internal/storage"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if err := runMigrations(database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	userRepo := repo.NewUserRepo(database)
	bookRepo := repo.NewBookRepo(database)
	categoryRepo := repo.NewCategoryRepo(database)

	// External collaborators
	store, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	mailer := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)

	// Services
	tokenService, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenExpiry)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}
	authService := auth.NewAuthService(userRepo, tokenService, mailer, cfg.ClientURL)
	bookService := books.NewBookService(bookRepo, store)
	categoryService := books.NewCategoryService(categoryRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.Production)
	userHandler := handlers.NewUserHandler(userRepo, bookService, authService, cfg.Production)
	adminHandler := handlers.NewAdminHandler(bookService, categoryService, userRepo)

	router := httphandler.NewRouter(authHandler, userHandler, adminHandler, tokenService, userRepo)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// runMigrations runs database migrations using goose
func runMigrations(database *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	migrationDir := "internal/db/migrations"
	if info, err := os.Stat(migrationDir); err != nil || !info.IsDir() {
		return fmt.Errorf("migrations directory not found (run from the repository root)")
	}

	if err := goose.Up(database, migrationDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
