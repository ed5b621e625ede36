package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/bookshelf/server/internal/apperr"
	"github.com/bookshelf/server/internal/model"
)

// CategoryRepo defines the interface for book category repository operations
type CategoryRepo interface {
	Create(ctx context.Context, name string) (model.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Category, error)
	GetByName(ctx context.Context, name string) (model.Category, error)
	GetAll(ctx context.Context) ([]model.Category, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo creates a new CategoryRepo instance
func NewCategoryRepo(db *sql.DB) CategoryRepo {
	return &categoryRepo{db: db}
}

const categoryColumns = `id, name, created_at, updated_at`

func scanCategory(row rowScanner) (model.Category, error) {
	var (
		cat   model.Category
		idStr string
	)
	err := row.Scan(&idStr, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		return model.Category{}, err
	}
	cat.ID, err = uuid.Parse(idStr)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to parse category ID: %w", err)
	}
	return cat, nil
}

// Create inserts a new category; a duplicate name is a conflict
func (r *categoryRepo) Create(ctx context.Context, name string) (model.Category, error) {
	query := `
		INSERT INTO book_categories (name)
		VALUES ($1)
		RETURNING ` + categoryColumns
	cat, err := scanCategory(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return model.Category{}, apperr.Wrap(apperr.ErrConflict, "category name already exists", err)
		}
		return model.Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	return cat, nil
}

// GetByID retrieves a category by ID
func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM book_categories WHERE id = $1`
	cat, err := scanCategory(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Category{}, apperr.Wrap(apperr.ErrNotFound, "category not found", err)
		}
		return model.Category{}, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// GetByName retrieves a category by its unique name
func (r *categoryRepo) GetByName(ctx context.Context, name string) (model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM book_categories WHERE name = $1`
	cat, err := scanCategory(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Category{}, apperr.Wrap(apperr.ErrNotFound, "category not found", err)
		}
		return model.Category{}, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// GetAll retrieves all categories
func (r *categoryRepo) GetAll(ctx context.Context) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM book_categories ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return cats, nil
}

// UpdateName renames a category
func (r *categoryRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) (model.Category, error) {
	query := `
		UPDATE book_categories
		SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + categoryColumns
	cat, err := scanCategory(r.db.QueryRowContext(ctx, query, id.String(), name))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Category{}, apperr.Wrap(apperr.ErrNotFound, "category not found", err)
		}
		if _, ok := isUniqueViolation(err); ok {
			return model.Category{}, apperr.Wrap(apperr.ErrConflict, "category name already exists", err)
		}
		return model.Category{}, fmt.Errorf("failed to update category: %w", err)
	}
	return cat, nil
}

// Delete removes a category. Books referencing it are left untouched.
func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM book_categories WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return apperr.E(apperr.ErrNotFound, "category not found")
	}
	return nil
}
