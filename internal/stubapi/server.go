// Package stubapi is an in-memory double of the library backend's REST
// surface. Client tests run against it over httptest, and cmd/stubserver
// serves it for local development. It mirrors the documented contract —
// availability decrement on borrow, rejection of double returns, the overdue
// sweep — without pretending to be a production backend.
package stubapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"libraclient/internal/catalog"
	"libraclient/internal/circulation"
	"libraclient/internal/session"
)

type account struct {
	user         session.User
	passwordHash string
	passwordSalt string
}

// Server holds the in-memory state behind the stub REST surface.
type Server struct {
	mu         sync.Mutex
	books      map[uuid.UUID]*catalog.Book
	borrowings map[uuid.UUID]*circulation.Borrowing
	accounts   map[uuid.UUID]*account
	tokens     map[string]uuid.UUID

	now    func() time.Time
	router chi.Router
}

// New creates an empty stub server.
func New() *Server {
	s := &Server{
		books:      make(map[uuid.UUID]*catalog.Book),
		borrowings: make(map[uuid.UUID]*circulation.Borrowing),
		accounts:   make(map[uuid.UUID]*account),
		tokens:     make(map[string]uuid.UUID),
		now:        time.Now,
	}
	s.router = s.routes()
	return s
}

// SetNow overrides the server clock. Tests use it to place records on either
// side of their due dates deterministically.
func (s *Server) SetNow(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/me", s.handleMe)

		r.Get("/books", s.handleListBooks)
		r.Get("/books/{id}", s.handleGetBook)
		r.Post("/books", s.handleCreateBook)
		r.Put("/books/{id}", s.handleUpdateBook)
		r.Delete("/books/{id}", s.handleDeleteBook)

		r.Post("/borrowings", s.handleCreateBorrowing)
		r.Get("/borrowings", s.handleListBorrowings)
		r.Get("/borrowings/stats", s.handleStats)
		r.Get("/borrowings/overdue", s.handleListOverdue)
		r.Post("/borrowings/mark-overdue", s.handleMarkOverdue)
		r.Get("/borrowings/my-borrowings", s.handleListMine(false))
		r.Get("/borrowings/my-borrowings/active", s.handleListMine(true))
		r.Get("/borrowings/user/{id}", s.handleListByUser(false))
		r.Get("/borrowings/user/{id}/active", s.handleListByUser(true))
		r.Post("/borrowings/{id}/return", s.handleReturn)
		r.Patch("/borrowings/{id}", s.handleUpdateBorrowing)
		r.Delete("/borrowings/{id}", s.handleDeleteBorrowing)
	})

	return r
}

// SeedUser registers an account directly, returning its ID. Intended for
// tests and the development server.
func (s *Server) SeedUser(email, name string, role session.Role, password string) (uuid.UUID, error) {
	hash, salt, err := hashPassword(password)
	if err != nil {
		return uuid.Nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.accounts[id] = &account{
		user:         session.User{ID: id, Email: email, Name: name, Role: role},
		passwordHash: hash,
		passwordSalt: salt,
	}
	return id, nil
}

// SeedBook inserts a catalog entry directly, returning its ID.
func (s *Server) SeedBook(draft catalog.Draft) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	now := s.now()
	s.books[id] = &catalog.Book{
		ID:              id,
		ISBN:            draft.ISBN,
		Title:           draft.Title,
		Author:          draft.Author,
		Category:        draft.Category,
		PublishedYear:   draft.PublishedYear,
		TotalCopies:     draft.TotalCopies,
		AvailableCopies: draft.TotalCopies,
		Location:        draft.Location,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return id
}

type ctxKey int

const accountKey ctxKey = 0

// authenticate resolves the bearer token to an account and stores it on the
// request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}

		s.mu.Lock()
		userID, ok := s.tokens[header[len(prefix):]]
		acct := s.accounts[userID]
		s.mu.Unlock()

		if !ok || acct == nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey, acct)))
	})
}

func requester(r *http.Request) *account {
	acct, _ := r.Context().Value(accountKey).(*account)
	return acct
}

// require rejects the request unless the requester's role grants cap.
func require(w http.ResponseWriter, r *http.Request, cap session.Capability) bool {
	if !session.Capabilities(requester(r).user.Role).Has(cap) {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func readPaging(r *http.Request) (page, limit int) {
	page, limit = 1, 20
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	return page, limit
}

// sortedBorrowings returns the ledger ordered by borrow date then ID so list
// responses are stable.
func (s *Server) sortedBorrowings() []*circulation.Borrowing {
	list := make([]*circulation.Borrowing, 0, len(s.borrowings))
	for _, b := range s.borrowings {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].BorrowDate.Equal(list[j].BorrowDate) {
			return list[i].BorrowDate.Before(list[j].BorrowDate)
		}
		return list[i].ID.String() < list[j].ID.String()
	})
	return list
}

// denormalize attaches copies of the related book and user for list views.
func (s *Server) denormalize(b *circulation.Borrowing) *circulation.Borrowing {
	out := *b
	if book, ok := s.books[b.BookID]; ok {
		bookCopy := *book
		out.Book = &bookCopy
	}
	if acct, ok := s.accounts[b.UserID]; ok {
		userCopy := acct.user
		out.User = &userCopy
	}
	return &out
}
