package circulation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"libraclient/internal/catalog"
)

// service implements the Service interface.
type service struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewService creates a circulation service over the REST backend.
func NewService(backend Backend, logger *slog.Logger) Service {
	return &service{
		backend:  backend,
		logger:   logger,
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
}

// Borrow creates a borrowing for the given book and user. The availability
// check against the freshly fetched book is advisory; the backend performs
// the authoritative one. A nil dueDate defaults to the standard loan period.
// On success the affected book is re-fetched so the caller sees the
// decremented available count.
func (s *service) Borrow(ctx context.Context, bookID, userID uuid.UUID, dueDate *time.Time) (*Borrowing, *catalog.Book, error) {
	key := "borrow:" + bookID.String() + ":" + userID.String()
	if !s.begin(key) {
		return nil, nil, ErrInFlight
	}
	defer s.end(key)

	book, err := s.backend.GetBook(ctx, bookID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch book: %w", err)
	}
	if !book.Available() {
		return nil, nil, fmt.Errorf("%q: %w", book.Title, ErrUnavailable)
	}

	borrowDate := s.now()
	due := borrowDate.AddDate(0, 0, DefaultLoanDays)
	if dueDate != nil {
		if dueDate.Before(borrowDate) {
			return nil, nil, fmt.Errorf("due date %s is before the borrow date", dueDate.Format(time.DateOnly))
		}
		due = *dueDate
	}

	borrowing, err := s.backend.CreateBorrowing(ctx, CreateRequest{
		UserID:  userID,
		BookID:  bookID,
		DueDate: &due,
	})
	if err != nil {
		return nil, nil, err
	}

	return borrowing, s.refreshBook(ctx, bookID), nil
}

// Return marks a borrowing as returned. A nil returnDate lets the backend
// stamp the current time. Returning an already-returned record is a backend
// error and is surfaced as such; the client does not pre-check it. On success
// the affected book is re-fetched so the caller sees the incremented
// available count.
func (s *service) Return(ctx context.Context, id uuid.UUID, returnDate *time.Time) (*Borrowing, *catalog.Book, error) {
	key := "return:" + id.String()
	if !s.begin(key) {
		return nil, nil, ErrInFlight
	}
	defer s.end(key)

	borrowing, err := s.backend.ReturnBorrowing(ctx, id, returnDate)
	if err != nil {
		return nil, nil, err
	}

	return borrowing, s.refreshBook(ctx, borrowing.BookID), nil
}

// refreshBook re-fetches a book after a mutation. The mutation has already
// succeeded at this point, so a failed refresh only means a stale display: it
// is logged and swallowed rather than turned into a spurious failure.
func (s *service) refreshBook(ctx context.Context, bookID uuid.UUID) *catalog.Book {
	book, err := s.backend.GetBook(ctx, bookID)
	if err != nil {
		s.logger.Warn("book refresh failed, counts may be stale", "book_id", bookID, "error", err)
		return nil
	}
	return book
}

// ListAll fetches every borrowing. Privileged.
func (s *service) ListAll(ctx context.Context) ([]*Borrowing, error) {
	return s.backend.ListBorrowings(ctx)
}

// ListByUser fetches a user's borrowings, optionally only the active ones.
func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*Borrowing, error) {
	return s.backend.ListUserBorrowings(ctx, userID, activeOnly)
}

// ListMine fetches the authenticated user's borrowings.
func (s *service) ListMine(ctx context.Context, activeOnly bool) ([]*Borrowing, error) {
	return s.backend.ListMyBorrowings(ctx, activeOnly)
}

// ListOverdue fetches the borrowings the backend considers past due.
func (s *service) ListOverdue(ctx context.Context) ([]*Borrowing, error) {
	return s.backend.ListOverdueBorrowings(ctx)
}

// Stats fetches ledger totals for dashboards.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.backend.BorrowingStats(ctx)
}

// Update patches a borrowing's status or return date. Privileged.
func (s *service) Update(ctx context.Context, id uuid.UUID, patch UpdatePatch) (*Borrowing, error) {
	return s.backend.UpdateBorrowing(ctx, id, patch)
}

// Delete removes a borrowing record. Admin only.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.backend.DeleteBorrowing(ctx, id)
}

// MarkOverdue asks the backend to relabel every past-due borrowed record as
// overdue in one sweep. The call is opaque beyond the reported count; callers
// re-fetch their lists afterward to see what changed.
func (s *service) MarkOverdue(ctx context.Context) (int, error) {
	n, err := s.backend.MarkOverdue(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("overdue sweep completed", "marked", n)
	return n, nil
}

func (s *service) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *service) end(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}
