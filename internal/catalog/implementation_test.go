package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	books   []*Book
	page    Page
	creates int
	updates int
}

func (f *fakeBackend) ListBooks(context.Context, int, int) ([]*Book, Page, error) {
	return f.books, f.page, nil
}

func (f *fakeBackend) GetBook(_ context.Context, id uuid.UUID) (*Book, error) {
	for _, b := range f.books {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeBackend) CreateBook(_ context.Context, draft Draft) (*Book, error) {
	f.creates++
	return &Book{ID: uuid.New(), Title: draft.Title}, nil
}

func (f *fakeBackend) UpdateBook(_ context.Context, id uuid.UUID, draft Draft) (*Book, error) {
	f.updates++
	return &Book{ID: id, Title: draft.Title}, nil
}

func (f *fakeBackend) DeleteBook(context.Context, uuid.UUID) error { return nil }

func validDraft() Draft {
	return Draft{Title: "Dune", Author: "Herbert", ISBN: "9780441172719", TotalCopies: 2}
}

func TestCreate_ValidationRunsBeforeNetwork(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewService(backend)

	for _, mutate := range []func(*Draft){
		func(d *Draft) { d.Title = "" },
		func(d *Draft) { d.Author = " " },
		func(d *Draft) { d.ISBN = "" },
		func(d *Draft) { d.TotalCopies = 0 },
	} {
		draft := validDraft()
		mutate(&draft)
		_, err := svc.Create(context.Background(), draft)
		require.Error(t, err)
	}
	assert.Zero(t, backend.creates, "invalid drafts must not reach the wire")

	_, err := svc.Create(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, 1, backend.creates)
}

func TestUpdate_ValidatesDraft(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewService(backend)

	draft := validDraft()
	draft.TotalCopies = -1
	_, err := svc.Update(context.Background(), uuid.New(), draft)
	require.Error(t, err)
	assert.Zero(t, backend.updates)
}

func TestSearch_AppliesFilterToFetchedPage(t *testing.T) {
	backend := &fakeBackend{books: sampleBooks(), page: Page{Page: 1, Limit: 20, Total: 3}}
	svc := NewService(backend)

	books, page, err := svc.Search(context.Background(), "fiction", 1, 20)
	require.NoError(t, err)
	assert.Len(t, books, 2)
	assert.Equal(t, 3, page.Total, "metadata reflects the unfiltered page")

	books, _, err = svc.Search(context.Background(), "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, books, 3)
}
