// internal/catalog/implementation.go
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// service is the in-memory catalog. It owns its monotonic ID counter and
// is the single source of truth for a book's availability state.
type service struct {
	mu     sync.RWMutex
	books  map[int]*Book
	nextID int
}

// NewService creates a new in-memory catalog service instance.
func NewService() Service {
	return &service{
		books:  make(map[int]*Book),
		nextID: 1,
	}
}

// Register adds a new book to the catalog. The ISBN must not collide
// with any book still in the catalog.
func (s *service) Register(ctx context.Context, title, author, isbn string) (*Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	isbn = strings.TrimSpace(isbn)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByISBNLocked(isbn) != nil {
		return nil, ErrDuplicateISBN
	}

	book := &Book{
		ID:        s.nextID,
		Title:     title,
		Author:    author,
		ISBN:      isbn,
		Available: true,
		Fine:      decimal.Zero,
	}
	s.nextID++
	s.books[book.ID] = book

	return copyBook(book), nil
}

func (s *service) FindByID(ctx context.Context, id int) (*Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyBook(book), nil
}

func (s *service) FindByISBN(ctx context.Context, isbn string) (*Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book := s.findByISBNLocked(strings.TrimSpace(isbn))
	if book == nil {
		return nil, ErrNotFound
	}
	return copyBook(book), nil
}

// Update replaces a book's catalog data. A borrowed book cannot be
// edited, and the new ISBN must not belong to a different book.
func (s *service) Update(ctx context.Context, id int, title, author, isbn string) (*Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	isbn = strings.TrimSpace(isbn)

	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !book.Available {
		return nil, ErrBookOnLoan
	}
	if other := s.findByISBNLocked(isbn); other != nil && other.ID != id {
		return nil, ErrDuplicateISBN
	}

	book.Title = title
	book.Author = author
	book.ISBN = isbn

	return copyBook(book), nil
}

// Remove deletes a book from the catalog. Borrowed books stay put until
// their loan is resolved.
func (s *service) Remove(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return ErrNotFound
	}
	if !book.Available {
		return ErrBookOnLoan
	}

	delete(s.books, id)
	return nil
}

func (s *service) ListAll(ctx context.Context) ([]*Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listLocked(func(*Book) bool { return true }), nil
}

func (s *service) ListByTitle(ctx context.Context, substr string) ([]*Book, error) {
	needle := strings.ToLower(strings.TrimSpace(substr))

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listLocked(func(b *Book) bool {
		return strings.Contains(strings.ToLower(b.Title), needle)
	}), nil
}

func (s *service) ListByAuthor(ctx context.Context, substr string) ([]*Book, error) {
	needle := strings.ToLower(strings.TrimSpace(substr))

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listLocked(func(b *Book) bool {
		return strings.Contains(strings.ToLower(b.Author), needle)
	}), nil
}

// MarkLoaned stamps the loan-shadow fields and flips availability off.
func (s *service) MarkLoaned(ctx context.Context, id int, loanedAt, dueAt time.Time, periodDays int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return ErrNotFound
	}
	if !book.Available {
		return ErrBookOnLoan
	}

	book.Available = false
	book.LoanedAt = &loanedAt
	book.DueAt = &dueAt
	book.PeriodDays = periodDays
	book.Fine = decimal.Zero
	book.FineSettled = false

	return nil
}

// MarkReturned clears all loan-shadow fields and makes the book
// available again.
func (s *service) MarkReturned(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return ErrNotFound
	}

	book.Available = true
	book.LoanedAt = nil
	book.DueAt = nil
	book.PeriodDays = 0
	book.Fine = decimal.Zero
	book.FineSettled = false

	return nil
}

// SetFine records an outstanding fine on a borrowed book. Negative
// amounts are rejected before any state changes.
func (s *service) SetFine(ctx context.Context, id int, fine decimal.Decimal) error {
	if fine.IsNegative() {
		return ErrNegativeFine
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return ErrNotFound
	}

	book.Fine = fine
	return nil
}

// SettleFine clears the recorded fine and marks it settled so that the
// next return attempt may complete.
func (s *service) SettleFine(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[id]
	if !ok {
		return ErrNotFound
	}

	book.Fine = decimal.Zero
	book.FineSettled = true
	return nil
}

func (s *service) findByISBNLocked(isbn string) *Book {
	for _, book := range s.books {
		if book.ISBN == isbn {
			return book
		}
	}
	return nil
}

func (s *service) listLocked(keep func(*Book) bool) []*Book {
	books := make([]*Book, 0, len(s.books))
	for _, book := range s.books {
		if keep(book) {
			books = append(books, copyBook(book))
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books
}

// copyBook returns a detached copy so callers never alias the catalog's
// own record.
func copyBook(b *Book) *Book {
	dup := *b
	if b.LoanedAt != nil {
		t := *b.LoanedAt
		dup.LoanedAt = &t
	}
	if b.DueAt != nil {
		t := *b.DueAt
		dup.DueAt = &t
	}
	return &dup
}
