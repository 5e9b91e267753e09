package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// service implements the Service interface.
type service struct {
	backend Backend
}

// NewService creates a catalog service over the REST backend.
func NewService(backend Backend) Service {
	return &service{backend: backend}
}

// List fetches one page of the catalog.
func (s *service) List(ctx context.Context, page, limit int) ([]*Book, Page, error) {
	return s.backend.ListBooks(ctx, page, limit)
}

// Get fetches a single book. Callers use this after a borrow or return to
// refresh the authoritative copy counts.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Book, error) {
	return s.backend.GetBook(ctx, id)
}

// Create adds a book to the catalog.
func (s *service) Create(ctx context.Context, draft Draft) (*Book, error) {
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("invalid book: %w", err)
	}
	return s.backend.CreateBook(ctx, draft)
}

// Update replaces a book's writable fields.
func (s *service) Update(ctx context.Context, id uuid.UUID, draft Draft) (*Book, error) {
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("invalid book: %w", err)
	}
	return s.backend.UpdateBook(ctx, id, draft)
}

// Delete removes a book from the catalog.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.backend.DeleteBook(ctx, id)
}

// Search fetches a page and applies the in-memory term filter to it. The
// filtering itself is local; only the page fetch costs a round trip.
func (s *service) Search(ctx context.Context, term string, page, limit int) ([]*Book, Page, error) {
	books, pg, err := s.backend.ListBooks(ctx, page, limit)
	if err != nil {
		return nil, Page{}, err
	}
	return Filter(books, term), pg, nil
}
