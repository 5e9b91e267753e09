package stubapi

import (
	"net/http"
	"sort"

	"github.com/google/uuid"

	"libraclient/internal/catalog"
	"libraclient/internal/circulation"
	"libraclient/internal/session"
)

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	page, limit := readPaging(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*catalog.Book, 0, len(s.books))
	for _, b := range s.books {
		bookCopy := *b
		list = append(list, &bookCopy)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Title < list[j].Title })

	total := len(list)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"books":    list[start:end],
		"metadata": catalog.Page{Page: page, Limit: limit, Total: total},
	})
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	bookCopy := *book
	writeJSON(w, http.StatusOK, map[string]any{"book": &bookCopy})
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	if !require(w, r, session.CapManageCatalog) {
		return
	}

	var draft catalog.Draft
	if !readJSON(w, r, &draft) {
		return
	}
	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.books {
		if b.ISBN == draft.ISBN {
			writeError(w, http.StatusConflict, "isbn already in catalog")
			return
		}
	}

	now := s.now()
	book := &catalog.Book{
		ID:              uuid.New(),
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
	s.books[book.ID] = book

	bookCopy := *book
	writeJSON(w, http.StatusCreated, map[string]any{"book": &bookCopy})
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	if !require(w, r, session.CapManageCatalog) {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var draft catalog.Draft
	if !readJSON(w, r, &draft) {
		return
	}
	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	for _, b := range s.books {
		if b.ID != id && b.ISBN == draft.ISBN {
			writeError(w, http.StatusConflict, "isbn already in catalog")
			return
		}
	}

	// Changing the total shifts the available count by the same delta so the
	// number of outstanding loans stays consistent.
	delta := draft.TotalCopies - book.TotalCopies
	available := book.AvailableCopies + delta
	if available < 0 {
		available = 0
	}
	if available > draft.TotalCopies {
		available = draft.TotalCopies
	}

	book.ISBN = draft.ISBN
	book.Title = draft.Title
	book.Author = draft.Author
	book.Category = draft.Category
	book.PublishedYear = draft.PublishedYear
	book.TotalCopies = draft.TotalCopies
	book.AvailableCopies = available
	book.Location = draft.Location
	book.UpdatedAt = s.now()

	bookCopy := *book
	writeJSON(w, http.StatusOK, map[string]any{"book": &bookCopy})
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	if !require(w, r, session.CapManageCatalog) {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	for _, b := range s.borrowings {
		if b.BookID == id && b.Status != circulation.StatusReturned {
			writeError(w, http.StatusConflict, "book has active borrowings")
			return
		}
	}

	delete(s.books, id)
	w.WriteHeader(http.StatusNoContent)
}
