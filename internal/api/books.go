package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"libraclient/internal/catalog"
)

// ListBooks fetches one page of the catalog.
func (c *Client) ListBooks(ctx context.Context, page, limit int) ([]*catalog.Book, catalog.Page, error) {
	var out struct {
		Books    []*catalog.Book `json:"books"`
		Metadata catalog.Page    `json:"metadata"`
	}
	path := fmt.Sprintf("/books?page=%d&limit=%d", page, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, catalog.Page{}, err
	}
	return out.Books, out.Metadata, nil
}

// GetBook fetches a single book by ID.
func (c *Client) GetBook(ctx context.Context, id uuid.UUID) (*catalog.Book, error) {
	var out struct {
		Book *catalog.Book `json:"book"`
	}
	err := c.do(ctx, http.MethodGet, "/books/"+id.String(), nil, &out, http.StatusOK)
	if err != nil {
		return nil, asSentinel(err, http.StatusNotFound, catalog.ErrNotFound)
	}
	return out.Book, nil
}

// CreateBook adds a book to the catalog. Privileged.
func (c *Client) CreateBook(ctx context.Context, draft catalog.Draft) (*catalog.Book, error) {
	var out struct {
		Book *catalog.Book `json:"book"`
	}
	if err := c.do(ctx, http.MethodPost, "/books", draft, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return out.Book, nil
}

// UpdateBook replaces a book's writable fields. Privileged.
func (c *Client) UpdateBook(ctx context.Context, id uuid.UUID, draft catalog.Draft) (*catalog.Book, error) {
	var out struct {
		Book *catalog.Book `json:"book"`
	}
	err := c.do(ctx, http.MethodPut, "/books/"+id.String(), draft, &out, http.StatusOK)
	if err != nil {
		return nil, asSentinel(err, http.StatusNotFound, catalog.ErrNotFound)
	}
	return out.Book, nil
}

// DeleteBook removes a book from the catalog. Privileged.
func (c *Client) DeleteBook(ctx context.Context, id uuid.UUID) error {
	err := c.do(ctx, http.MethodDelete, "/books/"+id.String(), nil, nil, http.StatusNoContent)
	return asSentinel(err, http.StatusNotFound, catalog.ErrNotFound)
}
