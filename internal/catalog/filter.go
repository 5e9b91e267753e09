package catalog

import "strings"

// Filter returns the books whose title, author, category or ISBN contains
// term, case-insensitively. An empty term keeps every book. The match runs
// over the already-fetched slice; it never touches the network and must be
// re-applied whenever the term or the source list changes.
func Filter(books []*Book, term string) []*Book {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return books
	}

	var matched []*Book
	for _, b := range books {
		if matchesBook(b, term) {
			matched = append(matched, b)
		}
	}
	return matched
}

func matchesBook(b *Book, lowerTerm string) bool {
	for _, field := range []string{b.Title, b.Author, b.Category, b.ISBN} {
		if strings.Contains(strings.ToLower(field), lowerTerm) {
			return true
		}
	}
	return false
}
