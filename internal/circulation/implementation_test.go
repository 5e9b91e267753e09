package circulation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraclient/internal/catalog"
)

// fakeBackend is an in-package stand-in for the REST client.
type fakeBackend struct {
	mu           sync.Mutex
	book         *catalog.Book
	bookErr      error
	bookFetches  int
	created      []CreateRequest
	createErr    error
	returned     []uuid.UUID
	returnErr    error
	returnResult *Borrowing
	returnGate   chan struct{}
	marked       int
}

func (f *fakeBackend) GetBook(ctx context.Context, id uuid.UUID) (*catalog.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookFetches++
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	bookCopy := *f.book
	return &bookCopy, nil
}

func (f *fakeBackend) CreateBorrowing(ctx context.Context, req CreateRequest) (*Borrowing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &Borrowing{
		ID:         uuid.New(),
		UserID:     req.UserID,
		BookID:     req.BookID,
		BorrowDate: time.Now(),
		DueDate:    *req.DueDate,
		Status:     StatusBorrowed,
	}, nil
}

func (f *fakeBackend) ReturnBorrowing(ctx context.Context, id uuid.UUID, returnDate *time.Time) (*Borrowing, error) {
	if f.returnGate != nil {
		<-f.returnGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	f.returned = append(f.returned, id)
	if f.returnResult != nil {
		return f.returnResult, nil
	}
	now := time.Now()
	return &Borrowing{ID: id, BookID: f.book.ID, Status: StatusReturned, ReturnDate: &now}, nil
}

func (f *fakeBackend) ListBorrowings(context.Context) ([]*Borrowing, error) { return nil, nil }
func (f *fakeBackend) ListUserBorrowings(context.Context, uuid.UUID, bool) ([]*Borrowing, error) {
	return nil, nil
}
func (f *fakeBackend) ListMyBorrowings(context.Context, bool) ([]*Borrowing, error) {
	return nil, nil
}
func (f *fakeBackend) ListOverdueBorrowings(context.Context) ([]*Borrowing, error) {
	return nil, nil
}
func (f *fakeBackend) BorrowingStats(context.Context) (*Stats, error) { return &Stats{}, nil }
func (f *fakeBackend) UpdateBorrowing(context.Context, uuid.UUID, UpdatePatch) (*Borrowing, error) {
	return nil, nil
}
func (f *fakeBackend) DeleteBorrowing(context.Context, uuid.UUID) error { return nil }
func (f *fakeBackend) MarkOverdue(context.Context) (int, error)         { return f.marked, nil }

func newTestService(t *testing.T, backend *fakeBackend, now time.Time) *service {
	t.Helper()
	svc := NewService(backend, slog.New(slog.DiscardHandler)).(*service)
	svc.now = func() time.Time { return now }
	return svc
}

func availableBook() *catalog.Book {
	return &catalog.Book{ID: uuid.New(), Title: "Dune", TotalCopies: 3, AvailableCopies: 1}
}

func TestBorrow_DefaultDueDate(t *testing.T) {
	now := date("2024-01-01")
	backend := &fakeBackend{book: availableBook()}
	svc := newTestService(t, backend, now)

	borrowing, _, err := svc.Borrow(context.Background(), backend.book.ID, uuid.New(), nil)
	require.NoError(t, err)

	wantDue := now.AddDate(0, 0, 14)
	assert.WithinDuration(t, wantDue, borrowing.DueDate, time.Second)
	require.Len(t, backend.created, 1)
	assert.WithinDuration(t, wantDue, *backend.created[0].DueDate, time.Second)
}

func TestBorrow_ExplicitDueDatePassesThrough(t *testing.T) {
	backend := &fakeBackend{book: availableBook()}
	svc := newTestService(t, backend, date("2024-01-01"))

	due := date("2024-01-10")
	borrowing, _, err := svc.Borrow(context.Background(), backend.book.ID, uuid.New(), &due)
	require.NoError(t, err)
	assert.True(t, borrowing.DueDate.Equal(due))
}

func TestBorrow_DueDateBeforeBorrowDateRejected(t *testing.T) {
	backend := &fakeBackend{book: availableBook()}
	svc := newTestService(t, backend, date("2024-01-15"))

	due := date("2024-01-10")
	_, _, err := svc.Borrow(context.Background(), backend.book.ID, uuid.New(), &due)
	require.Error(t, err)
	assert.Empty(t, backend.created, "invalid request must not reach the wire")
}

func TestBorrow_UnavailableBookRejected(t *testing.T) {
	book := availableBook()
	book.AvailableCopies = 0
	backend := &fakeBackend{book: book}
	svc := newTestService(t, backend, time.Now())

	_, _, err := svc.Borrow(context.Background(), book.ID, uuid.New(), nil)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, backend.created)
}

func TestBorrow_RefreshesBookAfterCreate(t *testing.T) {
	backend := &fakeBackend{book: availableBook()}
	svc := newTestService(t, backend, time.Now())

	_, book, err := svc.Borrow(context.Background(), backend.book.ID, uuid.New(), nil)
	require.NoError(t, err)
	require.NotNil(t, book)
	// One fetch for the advisory check, one to reconcile after the create.
	assert.Equal(t, 2, backend.bookFetches)
}

func TestReturn_RefreshesBook(t *testing.T) {
	backend := &fakeBackend{book: availableBook()}
	svc := newTestService(t, backend, time.Now())

	borrowing, book, err := svc.Return(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, borrowing.Status)
	require.NotNil(t, book)
	assert.Equal(t, 1, backend.bookFetches)
}

func TestReturn_BackendRejectionSurfaced(t *testing.T) {
	backend := &fakeBackend{book: availableBook(), returnErr: errors.New("borrowing already returned")}
	svc := newTestService(t, backend, time.Now())

	_, _, err := svc.Return(context.Background(), uuid.New(), nil)
	require.EqualError(t, err, "borrowing already returned")
}

func TestReturn_RefreshFailureIsNotFatal(t *testing.T) {
	backend := &fakeBackend{book: availableBook(), bookErr: errors.New("boom")}
	svc := newTestService(t, backend, time.Now())

	borrowing, book, err := svc.Return(context.Background(), uuid.New(), nil)
	require.NoError(t, err, "the return itself succeeded")
	assert.NotNil(t, borrowing)
	assert.Nil(t, book, "stale display, not an error")
}

func TestReturn_DoubleSubmissionDeduplicated(t *testing.T) {
	backend := &fakeBackend{book: availableBook(), returnGate: make(chan struct{})}
	svc := newTestService(t, backend, time.Now())
	id := uuid.New()

	firstDone := make(chan error, 1)
	go func() {
		_, _, err := svc.Return(context.Background(), id, nil)
		firstDone <- err
	}()

	// Wait until the first call is parked inside the backend.
	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.inflight) == 1
	}, time.Second, time.Millisecond)

	_, _, err := svc.Return(context.Background(), id, nil)
	require.ErrorIs(t, err, ErrInFlight)

	close(backend.returnGate)
	require.NoError(t, <-firstDone)

	// A later, sequential return is allowed again (and rejected by the
	// backend, not the guard).
	_, _, err = svc.Return(context.Background(), id, nil)
	require.NoError(t, err)
	assert.Len(t, backend.returned, 2)
}
