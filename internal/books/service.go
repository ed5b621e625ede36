// Package books implements the admin-facing book and category operations,
// including the asset upload pipeline: validate, transform, upload,
// reconcile, commit.
package books

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bookshelf/server/internal/apperr"
	"github.com/bookshelf/server/internal/media"
	"github.com/bookshelf/server/internal/model"
	"github.com/bookshelf/server/internal/repo"
	"github.com/bookshelf/server/internal/storage"
)

const (
	// maxAssetSize is the per-file ceiling for uploaded assets.
	maxAssetSize = 5_000_000

	bookFolder  = "books"
	coverFolder = "book_covers"
)

// Upload is one incoming multipart file, fully read into memory
type Upload struct {
	Data        []byte
	ContentType string
}

// BookService runs the asset pipeline and book CRUD
type BookService struct {
	books repo.BookRepo
	store storage.ObjectStore
}

// NewBookService creates a new book service
func NewBookService(books repo.BookRepo, store storage.ObjectStore) *BookService {
	return &BookService{books: books, store: store}
}

func validateBookFile(f Upload) error {
	if len(f.Data) == 0 {
		return apperr.E(apperr.ErrValidation, "book file is required")
	}
	if f.ContentType != "application/pdf" {
		return apperr.E(apperr.ErrValidation, "unsupported file format")
	}
	if len(f.Data) > maxAssetSize {
		return apperr.E(apperr.ErrValidation, "book file exceeds the 5 MB limit")
	}
	return nil
}

func validateCoverFile(f Upload) error {
	if len(f.Data) == 0 {
		return apperr.E(apperr.ErrValidation, "cover image is required")
	}
	if !strings.HasPrefix(f.ContentType, "image") {
		return apperr.E(apperr.ErrValidation, "unsupported file format")
	}
	if len(f.Data) > maxAssetSize {
		return apperr.E(apperr.ErrValidation, "cover image exceeds the 5 MB limit")
	}
	return nil
}

// Create runs the full pipeline for a new book. All validation completes
// before the first remote call. If the cover upload fails after the book
// upload succeeded, the orphaned remote object is not rolled back; the
// caller sees a single pipeline failure.
func (s *BookService) Create(ctx context.Context, title, author string, categoryID uuid.UUID, book, cover Upload) (model.Book, error) {
	if title == "" {
		return model.Book{}, apperr.E(apperr.ErrValidation, "book title is required")
	}
	if author == "" {
		return model.Book{}, apperr.E(apperr.ErrValidation, "author name is required")
	}
	if categoryID == uuid.Nil {
		return model.Book{}, apperr.E(apperr.ErrValidation, "book category is required")
	}
	if err := validateBookFile(book); err != nil {
		return model.Book{}, err
	}
	if err := validateCoverFile(cover); err != nil {
		return model.Book{}, err
	}

	resized, err := media.ResizeCover(cover.Data)
	if err != nil {
		return model.Book{}, apperr.Wrap(apperr.ErrUpstream, "error resizing cover image", err)
	}

	bookRes, err := s.store.Put(ctx, book.Data, storage.PutInput{
		Kind:   storage.KindRaw,
		Folder: bookFolder,
		Format: "pdf",
	})
	if err != nil {
		return model.Book{}, apperr.Wrap(apperr.ErrUpstream, "failed to upload book file", err)
	}

	coverRes, err := s.store.Put(ctx, resized, storage.PutInput{
		Kind:   storage.KindImage,
		Folder: coverFolder,
		Format: "jpg",
	})
	if err != nil {
		return model.Book{}, apperr.Wrap(apperr.ErrUpstream, "failed to upload cover image", err)
	}

	created, err := s.books.Create(ctx, model.Book{
		Title:          title,
		Author:         author,
		BookSecureURL:  bookRes.SecureURL,
		BookPublicURL:  bookRes.URL,
		CoverSecureURL: coverRes.SecureURL,
		CoverPublicURL: coverRes.URL,
		CategoryID:     categoryID,
	})
	if err != nil {
		return model.Book{}, fmt.Errorf("failed to save book: %w", err)
	}
	return created, nil
}

// Update applies a partial update: title, author, category and either
// asset may be replaced independently. Replacing an asset deletes the
// previous remote object first, keyed by its stored URL.
func (s *BookService) Update(ctx context.Context, id uuid.UUID, title, author string, categoryID uuid.UUID, book, cover *Upload) (model.Book, error) {
	existing, err := s.books.GetByID(ctx, id)
	if err != nil {
		return model.Book{}, err
	}

	if title != "" {
		existing.Title = title
	}
	if author != "" {
		existing.Author = author
	}
	if categoryID != uuid.Nil {
		existing.CategoryID = categoryID
	}

	if book != nil {
		if err := validateBookFile(*book); err != nil {
			return model.Book{}, err
		}
		if existing.BookSecureURL != "" {
			key := storage.ObjectKeyFromURL(existing.BookSecureURL)
			if err := s.store.Delete(ctx, key, storage.KindRaw); err != nil {
				return model.Book{}, apperr.Wrap(apperr.ErrUpstream, "failed to delete previous book file", err)
			}
		}
		res, err := s.store.Put(ctx, book.Data, storage.PutInput{
			Kind:   storage.KindRaw,
			Folder: bookFolder,
			Format: "pdf",
		})
		if err != nil {
			return model.Book{}, apperr.Wrap(apperr.ErrUpstream, "failed to upload book file", err)
		}
		existing.BookSecureURL = res.SecureURL
		existing.BookPublicURL = res.URL
	}

	if cover != nil {
		if err := validateCoverFile(*cover); err != nil {
			return model.Book{}, err
		}
		if existing.CoverSecureURL != "" {
			key := storage.ObjectKeyFromURL(existing.CoverSecureURL)
			if err := s.store.Delete(ctx, key, storage.KindImage); err != nil {
				return model.Book{}, apperr.Wrap(apperr.ErrUpstream, "failed to delete previous cover image", err)
			}
		}
		resized, err := media.ResizeCover(cover.Data)
		if err != nil {
			return model.Book{}, apperr.Wrap(apperr.ErrUpstream, "error resizing cover image", err)
		}
		res, err := s.store.Put(ctx, resized, storage.PutInput{
			Kind:   storage.KindImage,
			Folder: coverFolder,
			Format: "jpg",
		})
		if err != nil {
			return model.Book{}, apperr.Wrap(apperr.ErrUpstream, "failed to upload cover image", err)
		}
		existing.CoverSecureURL = res.SecureURL
		existing.CoverPublicURL = res.URL
	}

	updated, err := s.books.Update(ctx, existing)
	if err != nil {
		return model.Book{}, fmt.Errorf("failed to save book: %w", err)
	}
	return updated, nil
}

// Delete removes both remote assets and then the local record
func (s *BookService) Delete(ctx context.Context, id uuid.UUID) error {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if book.BookSecureURL != "" {
		key := storage.ObjectKeyFromURL(book.BookSecureURL)
		if err := s.store.Delete(ctx, key, storage.KindRaw); err != nil {
			return apperr.Wrap(apperr.ErrUpstream, "failed to delete book file", err)
		}
	}
	if book.CoverSecureURL != "" {
		key := storage.ObjectKeyFromURL(book.CoverSecureURL)
		if err := s.store.Delete(ctx, key, storage.KindImage); err != nil {
			return apperr.Wrap(apperr.ErrUpstream, "failed to delete cover image", err)
		}
	}

	if err := s.books.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete book record: %w", err)
	}
	return nil
}

// Get retrieves one book
func (s *BookService) Get(ctx context.Context, id uuid.UUID) (model.Book, error) {
	return s.books.GetByID(ctx, id)
}

// List retrieves all books
func (s *BookService) List(ctx context.Context) ([]model.Book, error) {
	return s.books.GetAll(ctx)
}
