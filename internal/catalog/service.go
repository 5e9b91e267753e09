package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for catalog access.
type Service interface {
	List(ctx context.Context, page, limit int) ([]*Book, Page, error)
	Get(ctx context.Context, id uuid.UUID) (*Book, error)
	Create(ctx context.Context, draft Draft) (*Book, error)
	Update(ctx context.Context, id uuid.UUID, draft Draft) (*Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, term string, page, limit int) ([]*Book, Page, error)
}

// Backend is the slice of the REST API the catalog service needs.
type Backend interface {
	ListBooks(ctx context.Context, page, limit int) ([]*Book, Page, error)
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	CreateBook(ctx context.Context, draft Draft) (*Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, draft Draft) (*Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
}
