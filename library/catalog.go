package library

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookInput carries the editable fields of a catalog entry.
type BookInput struct {
	Title     string
	Author    string
	Category  string
	Quantity  int
	Publisher string
	Year      int
}

// Validate applies the field rules shared by Add and Edit: no empty fields,
// positive quantity, year between 1800 and the current year.
func (in BookInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error("title must not be empty")),
		validation.Field(&in.Author, validation.Required.Error("author must not be empty")),
		validation.Field(&in.Category, validation.Required.Error("category must not be empty")),
		validation.Field(&in.Publisher, validation.Required.Error("publisher must not be empty")),
		// Required guards the zero value here: ozzo threshold rules treat
		// 0 as empty and would otherwise skip it.
		validation.Field(&in.Quantity,
			validation.Required.Error("quantity must be a positive integer"),
			validation.Min(1).Error("quantity must be a positive integer"),
		),
		validation.Field(&in.Year,
			validation.Required.Error("year must not be empty"),
			validation.Min(1800).Error("year must be 1800 or later"),
			validation.Max(time.Now().Year()).Error("year must not be in the future"),
		),
	)
}

// Catalog manages the book collection. Every mutation ends with a full
// snapshot persist.
type Catalog struct {
	store  *Store
	logger zerolog.Logger
}

func NewCatalog(store *Store, logger zerolog.Logger) *Catalog {
	return &Catalog{store: store, logger: logger}
}

// Add validates in, assigns a fresh id and creates the book as available.
func (c *Catalog) Add(in BookInput) (*Book, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	book := &Book{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Author:    in.Author,
		Category:  in.Category,
		Status:    StatusAvailable,
		Quantity:  in.Quantity,
		Publisher: in.Publisher,
		Year:      in.Year,
	}
	c.store.Books = append(c.store.Books, book)

	if err := c.store.Save(); err != nil {
		return nil, err
	}
	c.logger.Info().Str("book_id", book.ID).Str("title", book.Title).Msg("book added")
	return book, nil
}

// Edit updates the editable fields of an existing book in place. Id and
// status are never touched here.
func (c *Catalog) Edit(id string, in BookInput) (*Book, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	book, ok := c.store.FindBook(id)
	if !ok {
		return nil, fmt.Errorf("book %s: %w", id, ErrNotFound)
	}

	book.Title = in.Title
	book.Author = in.Author
	book.Category = in.Category
	book.Quantity = in.Quantity
	book.Publisher = in.Publisher
	book.Year = in.Year

	if err := c.store.Save(); err != nil {
		return nil, err
	}
	c.logger.Info().Str("book_id", id).Msg("book updated")
	return book, nil
}

// Delete removes a book. A book referenced by an unreturned borrow record
// cannot be deleted.
func (c *Catalog) Delete(id string) error {
	if _, ok := c.store.FindBook(id); !ok {
		return fmt.Errorf("book %s: %w", id, ErrNotFound)
	}
	for _, r := range c.store.Borrows {
		if r.BookID == id && !r.Returned {
			return fmt.Errorf("%w: book %s is currently borrowed", ErrConflict, id)
		}
	}

	kept := c.store.Books[:0]
	for _, b := range c.store.Books {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	c.store.Books = kept

	if err := c.store.Save(); err != nil {
		return err
	}
	c.logger.Info().Str("book_id", id).Msg("book deleted")
	return nil
}

// List returns the full collection in insertion order.
func (c *Catalog) List() []*Book {
	return append([]*Book(nil), c.store.Books...)
}

// Search filters the collection. All supplied filters are ANDed; empty ones
// pass every row. The term matches title or author case-insensitively, the
// id fragment is a substring match, and the category is an exact match
// unless it is empty or the "all" sentinel.
func (c *Catalog) Search(term, idFragment, category string) []*Book {
	term = strings.ToLower(term)
	idFragment = strings.ToLower(idFragment)
	anyCategory := category == "" || strings.EqualFold(category, "all")

	var out []*Book
	for _, b := range c.store.Books {
		if term != "" &&
			!strings.Contains(strings.ToLower(b.Title), term) &&
			!strings.Contains(strings.ToLower(b.Author), term) {
			continue
		}
		if idFragment != "" && !strings.Contains(strings.ToLower(b.ID), idFragment) {
			continue
		}
		if !anyCategory && b.Category != category {
			continue
		}
		out = append(out, b)
	}
	return out
}

// BulkImport adds external candidates to the catalog and reports how many
// were new. A candidate whose exact title already exists is skipped.
// Imported rows are taken as-is (quantity 1, unparsable years become 0)
// rather than field-validated, so one odd upstream row cannot abort the
// batch. Nothing is persisted when every candidate is a duplicate.
func (c *Catalog) BulkImport(drafts []BookDraft) (int, error) {
	added := 0
	for _, d := range drafts {
		if c.titleExists(d.Title) {
			continue
		}
		year, _ := strconv.Atoi(d.Year)
		c.store.Books = append(c.store.Books, &Book{
			ID:        uuid.NewString(),
			Title:     d.Title,
			Author:    strings.Join(d.Authors, ", "),
			Category:  d.Category,
			Status:    StatusAvailable,
			Quantity:  1,
			Publisher: d.Publisher,
			Year:      year,
		})
		added++
	}
	if added == 0 {
		return 0, nil
	}

	if err := c.store.Save(); err != nil {
		return 0, err
	}
	c.logger.Info().Int("added", added).Int("candidates", len(drafts)).Msg("bulk import complete")
	return added, nil
}

// Stats counts available and borrowed books for the statistics view.
func (c *Catalog) Stats() (available, borrowed int) {
	for _, b := range c.store.Books {
		if b.Status == StatusAvailable {
			available++
		} else {
			borrowed++
		}
	}
	return available, borrowed
}

func (c *Catalog) titleExists(title string) bool {
	for _, b := range c.store.Books {
		if b.Title == title {
			return true
		}
	}
	return false
}
