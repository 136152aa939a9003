package library

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LoanPeriodDays is the fixed loan length used to compute due dates.
const LoanPeriodDays = 14

// Ledger manages borrow records and is the only code path that mutates a
// book's status, so the denormalized status and the records cannot diverge.
type Ledger struct {
	store  *Store
	logger zerolog.Logger
	now    func() time.Time
}

func NewLedger(store *Store, logger zerolog.Logger) *Ledger {
	return &Ledger{store: store, logger: logger, now: time.Now}
}

// Loan is a borrow record joined to its catalog entry.
type Loan struct {
	Record *BorrowRecord
	Book   *Book
}

// Borrow opens a loan for username. Only readers may borrow, the book must
// exist and must not already be on loan.
func (l *Ledger) Borrow(bookID, username string, role Role) (*BorrowRecord, error) {
	if !role.Can(CapBorrow) {
		return nil, fmt.Errorf("%w: only readers may borrow books", ErrPermission)
	}
	book, ok := l.store.FindBook(bookID)
	if !ok {
		return nil, fmt.Errorf("book %s: %w", bookID, ErrNotFound)
	}
	if book.Status != StatusAvailable {
		return nil, fmt.Errorf("%w: book %q is not available", ErrConflict, book.Title)
	}

	today := NewDate(l.now())
	rec := &BorrowRecord{
		ID:         uuid.NewString(),
		BookID:     bookID,
		Username:   username,
		BorrowDate: today,
		DueDate:    today.AddDays(LoanPeriodDays),
		Returned:   false,
	}
	l.store.Borrows = append(l.store.Borrows, rec)
	book.Status = StatusBorrowed

	if err := l.store.Save(); err != nil {
		return nil, err
	}
	l.logger.Info().
		Str("borrow_id", rec.ID).
		Str("book_id", bookID).
		Str("username", username).
		Str("due", rec.DueDate.String()).
		Msg("book borrowed")
	return rec, nil
}

// Return closes a loan and makes the book available again. Returning an
// already-closed loan is a conflict; a book deleted since the loan opened
// is skipped silently.
func (l *Ledger) Return(borrowID string) error {
	rec, ok := l.store.FindBorrow(borrowID)
	if !ok {
		return fmt.Errorf("borrow record %s: %w", borrowID, ErrNotFound)
	}
	if rec.Returned {
		return fmt.Errorf("%w: borrow record %s already returned", ErrConflict, borrowID)
	}

	rec.Returned = true
	if book, ok := l.store.FindBook(rec.BookID); ok {
		book.Status = StatusAvailable
	} else {
		l.logger.Warn().Str("book_id", rec.BookID).Msg("returned loan references a deleted book")
	}

	if err := l.store.Save(); err != nil {
		return err
	}
	l.logger.Info().Str("borrow_id", borrowID).Msg("book returned")
	return nil
}

// ActiveFor lists the open loans held by username, insertion order.
func (l *Ledger) ActiveFor(username string) []*BorrowRecord {
	var out []*BorrowRecord
	for _, r := range l.store.Borrows {
		if r.Username == username && !r.Returned {
			out = append(out, r)
		}
	}
	return out
}

// ListAll joins every borrow record to its book. Records whose book has
// been deleted are omitted.
func (l *Ledger) ListAll() []Loan {
	var out []Loan
	for _, r := range l.store.Borrows {
		book, ok := l.store.FindBook(r.BookID)
		if !ok {
			continue
		}
		out = append(out, Loan{Record: r, Book: book})
	}
	return out
}
