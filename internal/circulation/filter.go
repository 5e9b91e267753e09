package circulation

import (
	"strings"
	"time"
)

// Filter returns the borrowings matching term, case-insensitively, across the
// embedded book's title, author, category and ISBN, the borrower's name, and
// the display status label (so searching "overdue" finds past-due loans even
// before a sweep has relabeled them). An empty term keeps every record.
func Filter(borrowings []*Borrowing, term string, now time.Time) []*Borrowing {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return borrowings
	}

	var matched []*Borrowing
	for _, b := range borrowings {
		if matchesBorrowing(b, term, now) {
			matched = append(matched, b)
		}
	}
	return matched
}

func matchesBorrowing(b *Borrowing, lowerTerm string, now time.Time) bool {
	fields := []string{string(b.Status), StatusLabel(b, now)}
	if b.Book != nil {
		fields = append(fields, b.Book.Title, b.Book.Author, b.Book.Category, b.Book.ISBN)
	}
	if b.User != nil {
		fields = append(fields, b.User.Name)
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), lowerTerm) {
			return true
		}
	}
	return false
}
