package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-desk/library"
	"library-desk/pkg/logger"
)

func main() {
	// A missing .env is fine; the config has defaults for everything.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "library-desk",
		Short:         "Manage a small library's catalog, accounts and borrow ledger",
		Long:          "library-desk runs an interactive session over the JSON data files.\nCommands are gated by the role of the account you log in with.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSession,
	}
}

func runSession(cmd *cobra.Command, _ []string) error {
	cfg, err := library.LoadConfig(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	store, err := library.OpenStore(cfg, log)
	if err != nil {
		return err
	}

	s := &session{
		sc:       bufio.NewScanner(os.Stdin),
		cfg:      cfg,
		catalog:  library.NewCatalog(store, log),
		ledger:   library.NewLedger(store, log),
		accounts: library.NewAccounts(store, log),
	}
	return s.run(cmd)
}

type session struct {
	sc       *bufio.Scanner
	cfg      library.Config
	catalog  *library.Catalog
	ledger   *library.Ledger
	accounts *library.Accounts
	user     *library.Account
}

func (s *session) run(cmd *cobra.Command) error {
	fmt.Println("Welcome to Library Desk.")
	for {
		if s.user == nil {
			fmt.Println("\nCommands: login, register, exit")
		} else {
			fmt.Printf("\nLogged in as %s (%s). Commands: %s\n", s.user.Username, s.user.Role, strings.Join(s.commands(), ", "))
		}
		fmt.Print("> ")
		if !s.sc.Scan() {
			return nil
		}
		input := strings.TrimSpace(s.sc.Text())

		switch {
		case input == "exit":
			fmt.Println("Goodbye!")
			return nil
		case input == "":
			continue
		case s.user == nil:
			s.dispatchAnonymous(input)
		default:
			s.dispatch(cmd, input)
		}
	}
}

func (s *session) dispatchAnonymous(input string) {
	switch input {
	case "login":
		s.handleLogin()
	case "register":
		s.handleRegister()
	default:
		fmt.Println("Unknown command. Use: login, register, exit")
	}
}

// commands lists what the logged-in role may do, mirroring the role menus
// of the legacy desk application.
func (s *session) commands() []string {
	cmds := []string{"search"}
	role := s.user.Role
	if role.Can(library.CapBorrow) {
		cmds = append(cmds, "borrow", "my borrows")
	}
	if role.Can(library.CapManageBooks) {
		cmds = append(cmds, "list books", "add book", "edit book", "delete book", "seed")
	}
	if role.Can(library.CapManageBorrows) {
		cmds = append(cmds, "list borrows", "return")
	}
	if role.Can(library.CapViewStats) {
		cmds = append(cmds, "stats")
	}
	return append(cmds, "logout", "exit")
}

func (s *session) dispatch(cmd *cobra.Command, input string) {
	role := s.user.Role
	switch input {
	case "search":
		s.handleSearch()
	case "borrow":
		s.requireCap(role, library.CapBorrow, s.handleBorrow)
	case "my borrows":
		s.requireCap(role, library.CapBorrow, s.handleMyBorrows)
	case "list books":
		s.requireCap(role, library.CapManageBooks, s.handleListBooks)
	case "add book":
		s.requireCap(role, library.CapManageBooks, s.handleAddBook)
	case "edit book":
		s.requireCap(role, library.CapManageBooks, s.handleEditBook)
	case "delete book":
		s.requireCap(role, library.CapManageBooks, s.handleDeleteBook)
	case "seed":
		s.requireCap(role, library.CapManageBooks, func() { s.handleSeed(cmd) })
	case "list borrows":
		s.requireCap(role, library.CapManageBorrows, s.handleListBorrows)
	case "return":
		s.requireCap(role, library.CapManageBorrows, s.handleReturn)
	case "stats":
		s.requireCap(role, library.CapViewStats, s.handleStats)
	case "logout":
		fmt.Printf("Logged out %s.\n", s.user.Username)
		s.user = nil
	default:
		fmt.Println("Unknown command.")
	}
}

func (s *session) requireCap(role library.Role, c library.Capability, fn func()) {
	if !role.Can(c) {
		fmt.Println("Your role does not allow that command.")
		return
	}
	fn()
}

// ------------------ Auth ------------------

func (s *session) handleLogin() {
	username := s.prompt("Username: ")
	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Printf("Failed to read password: %v\n", err)
		return
	}

	acct, err := s.accounts.Authenticate(username, password)
	if err != nil {
		fmt.Printf("Login failed: %v\n", err)
		return
	}
	s.user = acct
	fmt.Printf("Welcome, %s (%s).\n", acct.Name, acct.Role)
}

func (s *session) handleRegister() {
	in := library.RegisterInput{
		Username: s.prompt("Username: "),
	}
	password, err := readPassword("Password (a letter, a digit and one of @$!%*?&): ")
	if err != nil {
		fmt.Printf("Failed to read password: %v\n", err)
		return
	}
	in.Password = password
	in.Name = s.prompt("Full name: ")
	in.Phone = s.prompt("Phone: ")
	in.Email = s.prompt("Email: ")
	in.Address = s.prompt("Address: ")
	in.Role = library.Role(s.prompt("Role (admin, thuthu, docgia): "))

	if _, err := s.accounts.Register(in); err != nil {
		fmt.Printf("Registration failed: %v\n", err)
		return
	}
	fmt.Println("Registered. Please log in.")
}

// ------------------ Catalog ------------------

func (s *session) handleListBooks() {
	s.printBooks(s.catalog.List())
}

func (s *session) handleSearch() {
	term := s.prompt("Keyword (title/author, empty for any): ")
	idFragment := s.prompt("Id fragment (empty for any): ")
	category := s.prompt("Category (empty or 'all' for any): ")

	books := s.catalog.Search(term, idFragment, category)
	if len(books) == 0 {
		fmt.Println("No books found.")
		return
	}
	s.printBooks(books)
}

func (s *session) readBookInput() (library.BookInput, bool) {
	var in library.BookInput
	in.Title = s.prompt("Title: ")
	in.Author = s.prompt("Author: ")
	in.Category = s.prompt("Category: ")

	quantity, ok := s.promptInt("Quantity: ")
	if !ok {
		return in, false
	}
	in.Quantity = quantity

	in.Publisher = s.prompt("Publisher: ")

	year, ok := s.promptInt("Year: ")
	if !ok {
		return in, false
	}
	in.Year = year
	return in, true
}

func (s *session) handleAddBook() {
	in, ok := s.readBookInput()
	if !ok {
		return
	}
	book, err := s.catalog.Add(in)
	if err != nil {
		fmt.Printf("Error adding book: %v\n", err)
		return
	}
	fmt.Printf("Added %q with id %s\n", book.Title, book.ID)
}

func (s *session) handleEditBook() {
	id := s.prompt("Book id: ")
	in, ok := s.readBookInput()
	if !ok {
		return
	}
	book, err := s.catalog.Edit(id, in)
	if err != nil {
		fmt.Printf("Error updating book: %v\n", err)
		return
	}
	fmt.Printf("Updated %q\n", book.Title)
}

func (s *session) handleDeleteBook() {
	id := s.prompt("Book id: ")
	if err := s.catalog.Delete(id); err != nil {
		fmt.Printf("Error deleting book: %v\n", err)
		return
	}
	fmt.Println("Book deleted.")
}

func (s *session) handleSeed(cmd *cobra.Command) {
	client := library.NewGoogleBooksClient(s.cfg.GoogleBooks, logger.Get())
	drafts, err := client.FetchCandidates(cmd.Context())
	if err != nil {
		fmt.Printf("Seeding failed: %v\n", err)
		return
	}
	added, err := s.catalog.BulkImport(drafts)
	if err != nil {
		fmt.Printf("Seeding failed: %v\n", err)
		return
	}
	if added == 0 {
		fmt.Println("No new books to add (all candidates already exist).")
		return
	}
	fmt.Printf("Added %d new books.\n", added)
}

func (s *session) handleStats() {
	available, borrowed := s.catalog.Stats()
	fmt.Printf("Available: %d\nBorrowed:  %d\n", available, borrowed)
}

// ------------------ Circulation ------------------

func (s *session) handleBorrow() {
	id := s.prompt("Book id: ")
	rec, err := s.ledger.Borrow(id, s.user.Username, s.user.Role)
	if err != nil {
		fmt.Printf("Error borrowing book: %v\n", err)
		return
	}
	fmt.Printf("Borrowed. Due back on %s (record %s).\n", rec.DueDate, rec.ID)
}

func (s *session) handleReturn() {
	id := s.prompt("Borrow record id: ")
	if err := s.ledger.Return(id); err != nil {
		fmt.Printf("Error returning book: %v\n", err)
		return
	}
	fmt.Println("Returned.")
}

func (s *session) handleMyBorrows() {
	records := s.ledger.ActiveFor(s.user.Username)
	if len(records) == 0 {
		fmt.Println("You have no open loans.")
		return
	}
	fmt.Printf("%-38s %-38s %-12s %-12s\n", "Record", "Book", "Borrowed", "Due")
	fmt.Println(strings.Repeat("-", 104))
	for _, r := range records {
		fmt.Printf("%-38s %-38s %-12s %-12s\n", r.ID, r.BookID, r.BorrowDate, r.DueDate)
	}
}

func (s *session) handleListBorrows() {
	loans := s.ledger.ListAll()
	if len(loans) == 0 {
		fmt.Println("No borrow records.")
		return
	}
	fmt.Printf("%-38s %-30s %-15s %-12s %-12s %s\n", "Record", "Title", "Borrower", "Borrowed", "Due", "Status")
	fmt.Println(strings.Repeat("-", 120))
	for _, loan := range loans {
		status := "open"
		if loan.Record.Returned {
			status = "returned"
		}
		fmt.Printf("%-38s %-30s %-15s %-12s %-12s %s\n",
			loan.Record.ID,
			truncateString(loan.Book.Title, 30),
			loan.Record.Username,
			loan.Record.BorrowDate,
			loan.Record.DueDate,
			status)
	}
}

// ------------------ Prompt helpers ------------------

func (s *session) prompt(label string) string {
	fmt.Print(label)
	if !s.sc.Scan() {
		return ""
	}
	return strings.TrimSpace(s.sc.Text())
}

func (s *session) promptInt(label string) (int, bool) {
	raw := s.prompt(label)
	n, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Printf("Not a number: %q\n", raw)
		return 0, false
	}
	return n, true
}

func (s *session) printBooks(books []*library.Book) {
	if len(books) == 0 {
		fmt.Println("No books in the catalog.")
		return
	}
	fmt.Printf("%-38s %-30s %-20s %-12s %-10s %-4s %s\n", "ID", "Title", "Author", "Category", "Status", "Qty", "Year")
	fmt.Println(strings.Repeat("-", 125))
	for _, b := range books {
		fmt.Printf("%-38s %-30s %-20s %-12s %-10s %-4d %d\n",
			b.ID,
			truncateString(b.Title, 30),
			truncateString(b.Author, 20),
			truncateString(b.Category, 12),
			b.Status,
			b.Quantity,
			b.Year)
	}
}

// readPassword reads a password without echoing it.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(raw)), nil
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
