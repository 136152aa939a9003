package library

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store owns the durable copies of the three collections and the in-memory
// working set the managers mutate. Every data file is a whole-collection
// JSON snapshot: Save rewrites it entirely, nothing is appended.
//
// The store assumes a single process with a single active session; it takes
// no locks and concurrent external writers produce undefined results.
type Store struct {
	booksPath   string
	usersPath   string
	borrowsPath string
	logger      zerolog.Logger

	Books   []*Book
	Borrows []*BorrowRecord
	Users   []*Account
}

// OpenStore loads the snapshots under cfg.DataDir. Missing files yield
// empty collections so a first run starts clean; files that exist but do
// not parse fail with ErrCorruptStorage.
func OpenStore(cfg Config, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		booksPath:   cfg.booksPath(),
		usersPath:   cfg.usersPath(),
		borrowsPath: cfg.borrowsPath(),
		logger:      logger,
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the working set with the durable snapshots.
func (s *Store) Load() error {
	if err := loadSnapshot(s.booksPath, &s.Books); err != nil {
		return err
	}
	if err := loadSnapshot(s.borrowsPath, &s.Borrows); err != nil {
		return err
	}
	if err := loadSnapshot(s.usersPath, &s.Users); err != nil {
		return err
	}
	s.logger.Debug().
		Int("books", len(s.Books)).
		Int("borrows", len(s.Borrows)).
		Int("users", len(s.Users)).
		Msg("store loaded")
	return nil
}

// Save rewrites all three snapshots, creating the data directory if needed.
// The three writes are not atomic as a group: a crash in between can leave
// the files mutually inconsistent, which is accepted for single-user scope.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.booksPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := writeSnapshot(s.booksPath, s.Books); err != nil {
		return err
	}
	if err := writeSnapshot(s.borrowsPath, s.Borrows); err != nil {
		return err
	}
	return writeSnapshot(s.usersPath, s.Users)
}

// FindBook returns the live catalog entry for id.
func (s *Store) FindBook(id string) (*Book, bool) {
	for _, b := range s.Books {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// FindBorrow returns the live borrow record for id.
func (s *Store) FindBorrow(id string) (*BorrowRecord, bool) {
	for _, r := range s.Borrows {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// FindUser returns the account registered under username.
func (s *Store) FindUser(username string) (*Account, bool) {
	for _, u := range s.Users {
		if u.Username == username {
			return u, true
		}
	}
	return nil, false
}

func loadSnapshot[T any](path string, out *[]T) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		*out = []T{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("%s: %w: %v", path, ErrCorruptStorage, err)
	}
	if records == nil {
		records = []T{}
	}
	*out = records
	return nil
}

func writeSnapshot[T any](path string, records []T) error {
	if records == nil {
		records = []T{}
	}
	// Four-space indent keeps the files diffable by hand; non-ASCII text
	// (Vietnamese titles, names) is written verbatim, not \u-escaped.
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
