package circulation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"libraclient/internal/catalog"
)

// Service defines the interface for the borrowing lifecycle.
type Service interface {
	Borrow(ctx context.Context, bookID, userID uuid.UUID, dueDate *time.Time) (*Borrowing, *catalog.Book, error)
	Return(ctx context.Context, id uuid.UUID, returnDate *time.Time) (*Borrowing, *catalog.Book, error)
	ListAll(ctx context.Context) ([]*Borrowing, error)
	ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*Borrowing, error)
	ListMine(ctx context.Context, activeOnly bool) ([]*Borrowing, error)
	ListOverdue(ctx context.Context) ([]*Borrowing, error)
	Stats(ctx context.Context) (*Stats, error)
	Update(ctx context.Context, id uuid.UUID, patch UpdatePatch) (*Borrowing, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkOverdue(ctx context.Context) (int, error)
}

// Backend is the slice of the REST API the circulation service needs. GetBook
// is here because availability reconciliation re-fetches the affected book
// after every borrow and return.
type Backend interface {
	CreateBorrowing(ctx context.Context, req CreateRequest) (*Borrowing, error)
	ReturnBorrowing(ctx context.Context, id uuid.UUID, returnDate *time.Time) (*Borrowing, error)
	ListBorrowings(ctx context.Context) ([]*Borrowing, error)
	ListUserBorrowings(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*Borrowing, error)
	ListMyBorrowings(ctx context.Context, activeOnly bool) ([]*Borrowing, error)
	ListOverdueBorrowings(ctx context.Context) ([]*Borrowing, error)
	BorrowingStats(ctx context.Context) (*Stats, error)
	UpdateBorrowing(ctx context.Context, id uuid.UUID, patch UpdatePatch) (*Borrowing, error)
	DeleteBorrowing(ctx context.Context, id uuid.UUID) error
	MarkOverdue(ctx context.Context) (int, error)
	GetBook(ctx context.Context, id uuid.UUID) (*catalog.Book, error)
}
