package books

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelf/server/internal/apperr"
	"github.com/bookshelf/server/internal/model"
)

// fakeCategoryRepo is an in-memory repo.CategoryRepo.
type fakeCategoryRepo struct {
	categories map[uuid.UUID]model.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[uuid.UUID]model.Category)}
}

func (r *fakeCategoryRepo) Create(ctx context.Context, name string) (model.Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return model.Category{}, apperr.E(apperr.ErrConflict, "category name already exists")
		}
	}
	c := model.Category{ID: uuid.New(), Name: name}
	r.categories[c.ID] = c
	return c, nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return model.Category{}, apperr.E(apperr.ErrNotFound, "category not found")
	}
	return c, nil
}

func (r *fakeCategoryRepo) GetByName(ctx context.Context, name string) (model.Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return model.Category{}, apperr.E(apperr.ErrNotFound, "category not found")
}

func (r *fakeCategoryRepo) GetAll(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) (model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return model.Category{}, apperr.E(apperr.ErrNotFound, "category not found")
	}
	c.Name = name
	r.categories[id] = c
	return c, nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.categories[id]; !ok {
		return apperr.E(apperr.ErrNotFound, "category not found")
	}
	delete(r.categories, id)
	return nil
}

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()
	svc := NewCategoryService(newFakeCategoryRepo())

	created, err := svc.Create(ctx, "Science Fiction")
	require.NoError(t, err)
	assert.Equal(t, "Science Fiction", created.Name)

	_, err = svc.Create(ctx, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Create(ctx, "Science Fiction")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestCategoryService_Rename(t *testing.T) {
	ctx := context.Background()
	svc := NewCategoryService(newFakeCategoryRepo())

	fiction, err := svc.Create(ctx, "Fiction")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "History")
	require.NoError(t, err)

	// Renaming to a name held by a different category conflicts.
	_, err = svc.Rename(ctx, fiction.ID, "History")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	// Renaming to the current name succeeds.
	same, err := svc.Rename(ctx, fiction.ID, "Fiction")
	require.NoError(t, err)
	assert.Equal(t, "Fiction", same.Name)

	renamed, err := svc.Rename(ctx, fiction.ID, "Literary Fiction")
	require.NoError(t, err)
	assert.Equal(t, "Literary Fiction", renamed.Name)

	_, err = svc.Rename(ctx, uuid.New(), "Anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCategoryRepo()
	svc := NewCategoryService(repo)

	created, err := svc.Create(ctx, "Fiction")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Empty(t, repo.categories)

	err = svc.Delete(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
