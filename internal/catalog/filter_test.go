package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func sampleBooks() []*Book {
	return []*Book{
		{Title: "The Go Programming Language", Author: "Donovan", Category: "Programming", ISBN: "9780134190440"},
		{Title: "Pride and Prejudice", Author: "Austen", Category: "Fiction", ISBN: "9780141439518"},
		{Title: "Dune", Author: "Herbert", Category: "Fiction", ISBN: "9780441172719"},
	}
}

func TestFilter_EmptyTermIsIdentity(t *testing.T) {
	books := sampleBooks()
	assert.Equal(t, books, Filter(books, ""))
	assert.Equal(t, books, Filter(books, "  "))
}

func TestFilter_NoMatchReturnsEmpty(t *testing.T) {
	assert.Empty(t, Filter(sampleBooks(), "no such thing"))
}

func TestFilter_CaseInsensitiveAcrossFields(t *testing.T) {
	books := sampleBooks()

	assert.Len(t, Filter(books, "DUNE"), 1)
	assert.Len(t, Filter(books, "austen"), 1)
	assert.Len(t, Filter(books, "fiction"), 2)
	assert.Len(t, Filter(books, "9780134190440"), 1)
}

func TestFilter_SubsetProperty(t *testing.T) {
	books := sampleBooks()

	rapid.Check(t, func(t *rapid.T) {
		term := rapid.StringMatching(`[a-zA-Z0-9 ]{0,12}`).Draw(t, "term")
		matched := Filter(books, term)
		if len(matched) > len(books) {
			t.Fatalf("filter grew the list: %d > %d", len(matched), len(books))
		}
		seen := make(map[*Book]bool, len(books))
		for _, b := range books {
			seen[b] = true
		}
		for _, b := range matched {
			if !seen[b] {
				t.Fatalf("filter invented a book: %v", b)
			}
		}
	})
}
