package circulation

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"libraclient/internal/catalog"
	"libraclient/internal/session"
)

// DefaultLoanDays is the loan period applied when a borrow request carries no
// explicit due date.
const DefaultLoanDays = 14

// Status is a borrowing's stored lifecycle state. Records past their due date
// keep StatusBorrowed until an administrative sweep relabels them; display
// code derives overdue-ness from the due date instead of trusting this field.
type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusReturned Status = "returned"
	StatusOverdue  Status = "overdue"
)

var (
	// ErrNotFound is returned when the backend reports no borrowing for an ID.
	ErrNotFound = errors.New("borrowing not found")

	// ErrUnavailable is returned by the advisory availability check before a
	// borrow request is sent. The backend runs the authoritative check.
	ErrUnavailable = errors.New("no copies available")

	// ErrInFlight is returned when the same borrow or return is already
	// awaiting a response, so a double submission never reaches the wire.
	ErrInFlight = errors.New("operation already in progress")
)

// Borrowing links a user to a borrowed book with its lifecycle dates.
// ReturnDate is set exactly when Status is StatusReturned. Book and User are
// denormalized by the backend on list responses and may be nil elsewhere.
type Borrowing struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	BookID     uuid.UUID  `json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     Status     `json:"status"`

	Book *catalog.Book `json:"book,omitempty"`
	User *session.User `json:"user,omitempty"`
}

// CreateRequest is the body for a borrow-create call. A nil DueDate lets the
// backend apply its own default.
type CreateRequest struct {
	UserID  uuid.UUID  `json:"user_id"`
	BookID  uuid.UUID  `json:"book_id"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// UpdatePatch carries the fields a PATCH on a borrowing may change.
type UpdatePatch struct {
	Status     *Status    `json:"status,omitempty"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}

// Stats summarizes the borrowing ledger for dashboards.
type Stats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Returned int `json:"returned"`
	Overdue  int `json:"overdue"`
}
