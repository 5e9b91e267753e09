package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"libraclient/internal/circulation"
)

type borrowingEnvelope struct {
	Borrowing *circulation.Borrowing `json:"borrowing"`
}

type borrowingsEnvelope struct {
	Borrowings []*circulation.Borrowing `json:"borrowings"`
}

// CreateBorrowing creates a borrowing record.
func (c *Client) CreateBorrowing(ctx context.Context, req circulation.CreateRequest) (*circulation.Borrowing, error) {
	var out borrowingEnvelope
	if err := c.do(ctx, http.MethodPost, "/borrowings", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return out.Borrowing, nil
}

// ReturnBorrowing marks a borrowing as returned. A nil returnDate lets the
// backend stamp the current time.
func (c *Client) ReturnBorrowing(ctx context.Context, id uuid.UUID, returnDate *time.Time) (*circulation.Borrowing, error) {
	body := struct {
		ReturnDate *time.Time `json:"return_date,omitempty"`
	}{ReturnDate: returnDate}

	var out borrowingEnvelope
	err := c.do(ctx, http.MethodPost, "/borrowings/"+id.String()+"/return", body, &out, http.StatusOK)
	if err != nil {
		return nil, asSentinel(err, http.StatusNotFound, circulation.ErrNotFound)
	}
	return out.Borrowing, nil
}

// ListBorrowings fetches every borrowing. Privileged.
func (c *Client) ListBorrowings(ctx context.Context) ([]*circulation.Borrowing, error) {
	var out borrowingsEnvelope
	if err := c.do(ctx, http.MethodGet, "/borrowings", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Borrowings, nil
}

// ListUserBorrowings fetches one user's borrowings, optionally only those not
// yet returned.
func (c *Client) ListUserBorrowings(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*circulation.Borrowing, error) {
	path := "/borrowings/user/" + userID.String()
	if activeOnly {
		path += "/active"
	}
	var out borrowingsEnvelope
	if err := c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Borrowings, nil
}

// ListMyBorrowings fetches the authenticated user's borrowings.
func (c *Client) ListMyBorrowings(ctx context.Context, activeOnly bool) ([]*circulation.Borrowing, error) {
	path := "/borrowings/my-borrowings"
	if activeOnly {
		path += "/active"
	}
	var out borrowingsEnvelope
	if err := c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Borrowings, nil
}

// ListOverdueBorrowings fetches the records the backend considers past due.
func (c *Client) ListOverdueBorrowings(ctx context.Context) ([]*circulation.Borrowing, error) {
	var out borrowingsEnvelope
	if err := c.do(ctx, http.MethodGet, "/borrowings/overdue", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Borrowings, nil
}

// BorrowingStats fetches ledger totals.
func (c *Client) BorrowingStats(ctx context.Context) (*circulation.Stats, error) {
	var out struct {
		Stats *circulation.Stats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/borrowings/stats", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Stats, nil
}

// UpdateBorrowing patches a borrowing's status or return date. Privileged.
func (c *Client) UpdateBorrowing(ctx context.Context, id uuid.UUID, patch circulation.UpdatePatch) (*circulation.Borrowing, error) {
	var out borrowingEnvelope
	err := c.do(ctx, http.MethodPatch, "/borrowings/"+id.String(), patch, &out, http.StatusOK)
	if err != nil {
		return nil, asSentinel(err, http.StatusNotFound, circulation.ErrNotFound)
	}
	return out.Borrowing, nil
}

// DeleteBorrowing removes a borrowing record. Admin only.
func (c *Client) DeleteBorrowing(ctx context.Context, id uuid.UUID) error {
	err := c.do(ctx, http.MethodDelete, "/borrowings/"+id.String(), nil, nil, http.StatusNoContent)
	return asSentinel(err, http.StatusNotFound, circulation.ErrNotFound)
}

// MarkOverdue runs the administrative sweep relabeling past-due borrowed
// records, returning how many were marked.
func (c *Client) MarkOverdue(ctx context.Context) (int, error) {
	var out struct {
		Marked int `json:"marked"`
	}
	if err := c.do(ctx, http.MethodPost, "/borrowings/mark-overdue", nil, &out, http.StatusOK); err != nil {
		return 0, err
	}
	return out.Marked, nil
}
