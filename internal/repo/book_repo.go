package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/bookshelf/server/internal/apperr"
	"github.com/bookshelf/server/internal/model"
)

// BookRepo defines the interface for book repository operations
type BookRepo interface {
	Create(ctx context.Context, book model.Book) (model.Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Book, error)
	GetAll(ctx context.Context) ([]model.Book, error)
	Update(ctx context.Context, book model.Book) (model.Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type bookRepo struct {
	db *sql.DB
}

// NewBookRepo creates a new BookRepo instance
func NewBookRepo(db *sql.DB) BookRepo {
	return &bookRepo{db: db}
}

const bookColumns = `id, title, author, book_secure_url, book_public_url, cover_secure_url, cover_public_url, category_id, created_at, updated_at`

func scanBook(row rowScanner) (model.Book, error) {
	var (
		book  model.Book
		idStr string
		catID string
	)
	err := row.Scan(
		&idStr,
		&book.Title,
		&book.Author,
		&book.BookSecureURL,
		&book.BookPublicURL,
		&book.CoverSecureURL,
		&book.CoverPublicURL,
		&catID,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return model.Book{}, err
	}
	book.ID, err = uuid.Parse(idStr)
	if err != nil {
		return model.Book{}, fmt.Errorf("failed to parse book ID: %w", err)
	}
	book.CategoryID, err = uuid.Parse(catID)
	if err != nil {
		return model.Book{}, fmt.Errorf("failed to parse category ID: %w", err)
	}
	return book, nil
}

// Create inserts a new book record
func (r *bookRepo) Create(ctx context.Context, book model.Book) (model.Book, error) {
	query := `
		INSERT INTO books (title, author, book_secure_url, book_public_url, cover_secure_url, cover_public_url, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + bookColumns
	created, err := scanBook(r.db.QueryRowContext(ctx, query,
		book.Title,
		book.Author,
		book.BookSecureURL,
		book.BookPublicURL,
		book.CoverSecureURL,
		book.CoverPublicURL,
		book.CategoryID.String(),
	))
	if err != nil {
		return model.Book{}, fmt.Errorf("failed to insert book: %w", err)
	}
	return created, nil
}

// GetByID retrieves a book by ID
func (r *bookRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	book, err := scanBook(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Book{}, apperr.Wrap(apperr.ErrNotFound, "book not found", err)
		}
		return model.Book{}, fmt.Errorf("failed to query book: %w", err)
	}
	return book, nil
}

// GetAll retrieves all books
func (r *bookRepo) GetAll(ctx context.Context) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}
	return books, nil
}

// Update writes the full book row (last-write-wins on concurrent updates)
func (r *bookRepo) Update(ctx context.Context, book model.Book) (model.Book, error) {
	query := `
		UPDATE books
		SET title = $2,
		    author = $3,
		    book_secure_url = $4,
		    book_public_url = $5,
		    cover_secure_url = $6,
		    cover_public_url = $7,
		    category_id = $8,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + bookColumns
	updated, err := scanBook(r.db.QueryRowContext(ctx, query,
		book.ID.String(),
		book.Title,
		book.Author,
		book.BookSecureURL,
		book.BookPublicURL,
		book.CoverSecureURL,
		book.CoverPublicURL,
		book.CategoryID.String(),
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Book{}, apperr.Wrap(apperr.ErrNotFound, "book not found", err)
		}
		return model.Book{}, fmt.Errorf("failed to update book: %w", err)
	}
	return updated, nil
}

// Delete removes the book record
func (r *bookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return apperr.E(apperr.ErrNotFound, "book not found")
	}
	return nil
}
