package books

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bookshelf/server/internal/apperr"
	"github.com/bookshelf/server/internal/model"
	"github.com/bookshelf/server/internal/repo"
)

// CategoryService manages book categories
type CategoryService struct {
	categories repo.CategoryRepo
}

// NewCategoryService creates a new category service
func NewCategoryService(categories repo.CategoryRepo) *CategoryService {
	return &CategoryService{categories: categories}
}

// Create adds a category with a unique name
func (s *CategoryService) Create(ctx context.Context, name string) (model.Category, error) {
	if name == "" {
		return model.Category{}, apperr.E(apperr.ErrValidation, "category name is required")
	}
	return s.categories.Create(ctx, name)
}

// Rename changes a category's name. Renaming to a name held by a
// different category is a conflict; renaming to the current name is a
// no-op success.
func (s *CategoryService) Rename(ctx context.Context, id uuid.UUID, name string) (model.Category, error) {
	if name == "" {
		return model.Category{}, apperr.E(apperr.ErrValidation, "category name is required")
	}

	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return model.Category{}, err
	}

	existing, err := s.categories.GetByName(ctx, name)
	if err == nil && existing.ID != id {
		return model.Category{}, apperr.E(apperr.ErrConflict, "category name already exists")
	}
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return model.Category{}, fmt.Errorf("failed to check category name: %w", err)
	}

	return s.categories.UpdateName(ctx, id, name)
}

// Delete removes a category. Books referencing it keep their reference;
// the dangling link is accepted behavior.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return err
	}
	return s.categories.Delete(ctx, id)
}

// Get retrieves one category
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (model.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// List retrieves all categories
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.categories.GetAll(ctx)
}
