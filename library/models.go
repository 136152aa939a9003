package library

import (
	"strings"
	"time"
)

// BookStatus tracks whether a book is on loan. It is stored next to the
// borrow records rather than derived from them; only the Ledger mutates it.
type BookStatus string

const (
	StatusAvailable BookStatus = "available"
	StatusBorrowed  BookStatus = "borrowed"
)

// Book is one catalog entry. Quantity is informational only: a book id is
// a single borrowable unit no matter how many physical copies it counts.
type Book struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Category  string     `json:"category"`
	Status    BookStatus `json:"status"`
	Quantity  int        `json:"quantity"`
	Publisher string     `json:"publisher"`
	Year      int        `json:"year"`
}

// BorrowRecord links a book to the reader who holds it. At most one record
// with Returned=false may exist per book id.
type BorrowRecord struct {
	ID         string `json:"id"`
	BookID     string `json:"book_id"`
	Username   string `json:"username"`
	BorrowDate Date   `json:"borrow_date"`
	DueDate    Date   `json:"due_date"`
	Returned   bool   `json:"returned"`
}

// Account is a registered user. Username is the unique key.
type Account struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Role         Role   `json:"role"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
}

// BookDraft is a candidate catalog entry from an external source, not yet
// normalised into a Book.
type BookDraft struct {
	Title     string
	Authors   []string
	Category  string
	Publisher string
	Year      string
}

// Role gates which operations an account may perform. The wire values match
// the data files this system inherits: "thuthu" is librarian, "docgia" is
// reader.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "thuthu"
	RoleReader    Role = "docgia"
)

// Capability names an operation subset a role may be granted.
type Capability int

const (
	CapManageBooks Capability = iota
	CapManageBorrows
	CapBorrow
	CapViewStats
)

// Valid reports whether r is one of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLibrarian, RoleReader:
		return true
	}
	return false
}

// Can reports whether the role is granted the capability.
func (r Role) Can(c Capability) bool {
	switch c {
	case CapManageBooks, CapManageBorrows:
		return r == RoleAdmin || r == RoleLibrarian
	case CapBorrow:
		return r == RoleReader
	case CapViewStats:
		return r == RoleAdmin
	}
	return false
}

const dateLayout = "2006-01-02"

// Date is a calendar day, serialised as YYYY-MM-DD to keep the data files
// readable.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())}
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(dateLayout, strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
