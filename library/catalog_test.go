package library

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) (*Catalog, *Store, Config) {
	t.Helper()
	store, cfg := tempStore(t)
	return NewCatalog(store, zerolog.Nop()), store, cfg
}

func validBook() BookInput {
	return BookInput{
		Title:     "Dune",
		Author:    "Frank Herbert",
		Category:  "SciFi",
		Quantity:  3,
		Publisher: "Chilton",
		Year:      1965,
	}
}

func TestAddBook(t *testing.T) {
	catalog, _, _ := newCatalog(t)

	book, err := catalog.Add(validBook())
	require.NoError(t, err)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, StatusAvailable, book.Status)

	listed := catalog.List()
	require.Len(t, listed, 1)
	assert.Equal(t, book.ID, listed[0].ID)

	found := catalog.Search("dune", "", "")
	require.Len(t, found, 1)
	assert.Equal(t, book.ID, found[0].ID)
}

func TestAddBookValidation(t *testing.T) {
	catalog, _, _ := newCatalog(t)

	cases := map[string]func(*BookInput){
		"empty title":     func(in *BookInput) { in.Title = "" },
		"empty author":    func(in *BookInput) { in.Author = "" },
		"empty category":  func(in *BookInput) { in.Category = "" },
		"empty publisher": func(in *BookInput) { in.Publisher = "" },
		"zero quantity":   func(in *BookInput) { in.Quantity = 0 },
		"negative qty":    func(in *BookInput) { in.Quantity = -2 },
		"year too early":  func(in *BookInput) { in.Year = 1799 },
		"year in future":  func(in *BookInput) { in.Year = time.Now().Year() + 1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validBook()
			mutate(&in)
			_, err := catalog.Add(in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	assert.Empty(t, catalog.List(), "rejected input must not be stored")
}

func TestEditBook(t *testing.T) {
	catalog, _, _ := newCatalog(t)
	book, err := catalog.Add(validBook())
	require.NoError(t, err)

	in := validBook()
	in.Title = "Dune Messiah"
	in.Year = 1969
	updated, err := catalog.Edit(book.ID, in)
	require.NoError(t, err)

	assert.Equal(t, book.ID, updated.ID, "id never changes")
	assert.Equal(t, StatusAvailable, updated.Status, "status never changes")
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Equal(t, 1969, updated.Year)
}

func TestEditBookErrors(t *testing.T) {
	catalog, _, _ := newCatalog(t)
	book, err := catalog.Add(validBook())
	require.NoError(t, err)

	_, err = catalog.Edit("missing-id", validBook())
	assert.ErrorIs(t, err, ErrNotFound)

	bad := validBook()
	bad.Title = ""
	_, err = catalog.Edit(book.ID, bad)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Dune", catalog.List()[0].Title, "rejected edit must not apply")
}

func TestDeleteBook(t *testing.T) {
	catalog, _, _ := newCatalog(t)
	book, err := catalog.Add(validBook())
	require.NoError(t, err)
	other := validBook()
	other.Title = "Emma"
	_, err = catalog.Add(other)
	require.NoError(t, err)

	require.NoError(t, catalog.Delete(book.ID))
	listed := catalog.List()
	require.Len(t, listed, 1, "delete removes exactly one entry")
	assert.Equal(t, "Emma", listed[0].Title)

	assert.ErrorIs(t, catalog.Delete("missing-id"), ErrNotFound)
}

func TestDeleteBorrowedBookConflicts(t *testing.T) {
	catalog, store, _ := newCatalog(t)
	ledger := NewLedger(store, zerolog.Nop())

	book, err := catalog.Add(validBook())
	require.NoError(t, err)
	rec, err := ledger.Borrow(book.ID, "alice", RoleReader)
	require.NoError(t, err)

	assert.ErrorIs(t, catalog.Delete(book.ID), ErrConflict)
	require.Len(t, catalog.List(), 1)

	require.NoError(t, ledger.Return(rec.ID))
	assert.NoError(t, catalog.Delete(book.ID), "closed loans do not protect the book")
}

func TestSearch(t *testing.T) {
	catalog, _, _ := newCatalog(t)

	add := func(title, author, category string) *Book {
		in := validBook()
		in.Title = title
		in.Author = author
		in.Category = category
		book, err := catalog.Add(in)
		require.NoError(t, err)
		return book
	}
	dune := add("Dune", "Frank Herbert", "SciFi")
	add("Emma", "Jane Austen", "Romance")
	add("Frankenstein", "Mary Shelley", "SciFi")

	t.Run("category all returns everything", func(t *testing.T) {
		assert.Len(t, catalog.Search("", "", "all"), 3)
		assert.Len(t, catalog.Search("", "", ""), 3)
	})

	t.Run("term matches title or author case-insensitively", func(t *testing.T) {
		assert.Len(t, catalog.Search("DUNE", "", ""), 1)
		assert.Len(t, catalog.Search("shelley", "", ""), 1)
		// "an" appears in Frank Herbert, Jane Austen and Frankenstein.
		assert.Len(t, catalog.Search("an", "", ""), 3)
	})

	t.Run("id fragment is a substring match", func(t *testing.T) {
		found := catalog.Search("", dune.ID[:8], "")
		require.Len(t, found, 1)
		assert.Equal(t, dune.ID, found[0].ID)
	})

	t.Run("filters are ANDed", func(t *testing.T) {
		found := catalog.Search("frank", "", "SciFi")
		assert.Len(t, found, 2)
		found = catalog.Search("frank", "", "Romance")
		assert.Empty(t, found)
	})

	t.Run("category is an exact match", func(t *testing.T) {
		assert.Len(t, catalog.Search("", "", "SciFi"), 2)
		assert.Empty(t, catalog.Search("", "", "scifi"))
	})
}

func TestBulkImport(t *testing.T) {
	catalog, _, cfg := newCatalog(t)
	_, err := catalog.Add(validBook())
	require.NoError(t, err)

	drafts := []BookDraft{
		{Title: "Dune", Authors: []string{"Frank Herbert"}, Category: "SciFi", Publisher: "Chilton", Year: "1965"},
		{Title: "Lập Trình Python", Authors: []string{"Nguyễn Văn A", "Trần Thị B"}, Category: "Chung", Publisher: "NXB Trẻ", Year: "2021"},
		{Title: "Untitled Draft", Authors: []string{"Tác Giả Không Xác Định"}, Category: "Chung", Publisher: "NXB Không Xác Định", Year: "N/A"},
	}

	added, err := catalog.BulkImport(drafts)
	require.NoError(t, err)
	assert.Equal(t, 2, added, "exact duplicate title is skipped")

	books := catalog.List()
	require.Len(t, books, 3)

	imported := books[1]
	assert.Equal(t, "Nguyễn Văn A, Trần Thị B", imported.Author)
	assert.Equal(t, 1, imported.Quantity)
	assert.Equal(t, StatusAvailable, imported.Status)
	assert.Equal(t, 2021, imported.Year)
	assert.Equal(t, 0, books[2].Year, "unparsable year becomes zero")

	reloaded, err := OpenStore(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, reloaded.Books, 3, "import is persisted")
}

func TestBulkImportNoCandidates(t *testing.T) {
	catalog, _, _ := newCatalog(t)

	added, err := catalog.BulkImport(nil)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Empty(t, catalog.List())
}

func TestStats(t *testing.T) {
	catalog, store, _ := newCatalog(t)
	ledger := NewLedger(store, zerolog.Nop())

	first, err := catalog.Add(validBook())
	require.NoError(t, err)
	second := validBook()
	second.Title = "Emma"
	_, err = catalog.Add(second)
	require.NoError(t, err)

	available, borrowed := catalog.Stats()
	assert.Equal(t, 2, available)
	assert.Zero(t, borrowed)

	_, err = ledger.Borrow(first.ID, "alice", RoleReader)
	require.NoError(t, err)

	available, borrowed = catalog.Stats()
	assert.Equal(t, 1, available)
	assert.Equal(t, 1, borrowed)
}
