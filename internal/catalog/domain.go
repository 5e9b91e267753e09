package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the backend reports no book for an ID.
var ErrNotFound = errors.New("book not found")

// Book is a catalog entry as reported by the backend. AvailableCopies is
// authoritative on the server side; the client only reflects what the last
// fetch returned.
type Book struct {
	ID              uuid.UUID `json:"id"`
	ISBN            string    `json:"isbn"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Category        string    `json:"category,omitempty"`
	PublishedYear   int       `json:"published_year,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	Location        string    `json:"location,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// Available reports whether at least one copy can be borrowed right now.
func (b *Book) Available() bool {
	return b.AvailableCopies > 0
}

// Draft holds the writable fields for creating or updating a book.
type Draft struct {
	ISBN          string `json:"isbn"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Category      string `json:"category,omitempty"`
	PublishedYear int    `json:"published_year,omitempty"`
	TotalCopies   int    `json:"total_copies"`
	Location      string `json:"location,omitempty"`
}

// Validate checks the draft before it is sent to the backend. These checks
// mirror the backend's required-field rules so obvious mistakes fail inline
// without a network round trip.
func (d Draft) Validate() error {
	switch {
	case strings.TrimSpace(d.Title) == "":
		return errors.New("title is required")
	case strings.TrimSpace(d.Author) == "":
		return errors.New("author is required")
	case strings.TrimSpace(d.ISBN) == "":
		return errors.New("isbn is required")
	case d.TotalCopies < 1:
		return errors.New("total copies must be at least 1")
	}
	return nil
}

// Page describes one page of a paginated listing.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}
