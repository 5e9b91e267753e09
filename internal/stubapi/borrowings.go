package stubapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"libraclient/internal/circulation"
	"libraclient/internal/session"
)

func (s *Server) handleCreateBorrowing(w http.ResponseWriter, r *http.Request) {
	var req circulation.CreateRequest
	if !readJSON(w, r, &req) {
		return
	}

	acct := requester(r)
	if req.UserID == uuid.Nil {
		req.UserID = acct.user.ID
	}
	if req.UserID != acct.user.ID && !session.Capabilities(acct.user.Role).Has(session.CapBorrowForOthers) {
		writeError(w, http.StatusForbidden, "cannot borrow on behalf of another user")
		return
	}
	if req.BookID == uuid.Nil {
		writeError(w, http.StatusUnprocessableEntity, "book_id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[req.UserID]; !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	book, ok := s.books[req.BookID]
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	if book.AvailableCopies < 1 {
		writeError(w, http.StatusUnprocessableEntity, "no copies available")
		return
	}

	borrowDate := s.now()
	dueDate := borrowDate.AddDate(0, 0, circulation.DefaultLoanDays)
	if req.DueDate != nil {
		if req.DueDate.Before(borrowDate) {
			writeError(w, http.StatusUnprocessableEntity, "due date cannot be before borrow date")
			return
		}
		dueDate = *req.DueDate
	}

	book.AvailableCopies--
	book.UpdatedAt = borrowDate

	borrowing := &circulation.Borrowing{
		ID:         uuid.New(),
		UserID:     req.UserID,
		BookID:     req.BookID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
		Status:     circulation.StatusBorrowed,
	}
	s.borrowings[borrowing.ID] = borrowing

	writeJSON(w, http.StatusCreated, map[string]any{"borrowing": s.denormalize(borrowing)})
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	// An absent body means "returned now".
	var req struct {
		ReturnDate *time.Time `json:"return_date"`
	}
	if r.ContentLength != 0 && !readJSON(w, r, &req) {
		return
	}

	acct := requester(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	borrowing, ok := s.borrowings[id]
	if !ok {
		writeError(w, http.StatusNotFound, "borrowing not found")
		return
	}
	if borrowing.UserID != acct.user.ID && !session.Capabilities(acct.user.Role).Has(session.CapViewAllBorrowings) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	if borrowing.Status == circulation.StatusReturned {
		writeError(w, http.StatusConflict, "borrowing already returned")
		return
	}

	returnDate := s.now()
	if req.ReturnDate != nil {
		returnDate = *req.ReturnDate
	}

	borrowing.Status = circulation.StatusReturned
	borrowing.ReturnDate = &returnDate

	if book, ok := s.books[borrowing.BookID]; ok && book.AvailableCopies < book.TotalCopies {
		book.AvailableCopies++
		book.UpdatedAt = s.now()
	}

	writeJSON(w, http.StatusOK, map[string]any{"borrowing": s.denormalize(borrowing)})
}

func (s *Server) handleListBorrowings(w http.ResponseWriter, r *http.Request) {
	if !require(w, r, session.CapViewAllBorrowings) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeBorrowings(w, func(b *circulation.Borrowing) bool { return true })
}

func (s *Server) handleListByUser(activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		acct := requester(r)
		if id != acct.user.ID && !session.Capabilities(acct.user.Role).Has(session.CapViewAllBorrowings) {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		s.writeBorrowings(w, func(b *circulation.Borrowing) bool {
			if b.UserID != id {
				return false
			}
			return !activeOnly || b.Status != circulation.StatusReturned
		})
	}
}

func (s *Server) handleListMine(activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requester(r).user.ID

		s.mu.Lock()
		defer s.mu.Unlock()

		s.writeBorrowings(w, func(b *circulation.Borrowing) bool {
			if b.UserID != userID {
				return false
			}
			return !activeOnly || b.Status != circulation.StatusReturned
		})
	}
}

func (s *Server) handleListOverdue(w http.ResponseWriter, r *http.Request) {
	if !require(w, r, session.CapViewAllBorrowings) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.writeBorrowings(w, func(b *circulation.Borrowing) bool {
		return circulation.IsOverdue(b, now)
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !require(w, r, session.CapViewBorrowingStats) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := circulation.Stats{}
	now := s.now()
	for _, b := range s.borrowings {
		stats.Total++
		if b.Status == circulation.StatusReturned {
			stats.Returned++
		} else {
			stats.Active++
		}
		if circulation.IsOverdue(b, now) {
			stats.Overdue++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func (s *Server) handleMarkOverdue(w http.ResponseWriter, r *http.Request) {
	if !require(w, r, session.CapMarkOverdue) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	marked := 0
	for _, b := range s.borrowings {
		if b.Status == circulation.StatusBorrowed && b.DueDate.Before(now) {
			b.Status = circulation.StatusOverdue
			marked++
		}
	}

	writeJSON(w, http.StatusOK, map[string]int{"marked": marked})
}

func (s *Server) handleUpdateBorrowing(w http.ResponseWriter, r *http.Request) {
	if !require(w, r, session.CapUpdateBorrowing) {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch circulation.UpdatePatch
	if !readJSON(w, r, &patch) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	borrowing, ok := s.borrowings[id]
	if !ok {
		writeError(w, http.StatusNotFound, "borrowing not found")
		return
	}

	if patch.Status != nil {
		switch *patch.Status {
		case circulation.StatusBorrowed, circulation.StatusReturned, circulation.StatusOverdue:
		default:
			writeError(w, http.StatusUnprocessableEntity, "unknown status")
			return
		}
		borrowing.Status = *patch.Status
	}
	if patch.ReturnDate != nil {
		borrowing.ReturnDate = patch.ReturnDate
	}

	// Keep the return-date invariant: returned records always carry one,
	// anything else never does.
	if borrowing.Status == circulation.StatusReturned && borrowing.ReturnDate == nil {
		stamp := s.now()
		borrowing.ReturnDate = &stamp
	}
	if borrowing.Status != circulation.StatusReturned {
		borrowing.ReturnDate = nil
	}

	writeJSON(w, http.StatusOK, map[string]any{"borrowing": s.denormalize(borrowing)})
}

func (s *Server) handleDeleteBorrowing(w http.ResponseWriter, r *http.Request) {
	if !require(w, r, session.CapDeleteBorrowing) {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.borrowings[id]; !ok {
		writeError(w, http.StatusNotFound, "borrowing not found")
		return
	}

	delete(s.borrowings, id)
	w.WriteHeader(http.StatusNoContent)
}

// writeBorrowings responds with the denormalized records matching keep, in
// stable order. Callers hold the lock.
func (s *Server) writeBorrowings(w http.ResponseWriter, keep func(*circulation.Borrowing) bool) {
	out := make([]*circulation.Borrowing, 0)
	for _, b := range s.sortedBorrowings() {
		if keep(b) {
			out = append(out, s.denormalize(b))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"borrowings": out})
}
