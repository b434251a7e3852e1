package catalog

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

// MemoryCatalog is a Store kept in process memory.
type MemoryCatalog struct {
	mu     sync.RWMutex
	books  map[core.BookIDString]Book
	copies map[core.CopyIDString]Copy
}

// NewMemoryCatalog creates an empty MemoryCatalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		books:  make(map[core.BookIDString]Book),
		copies: make(map[core.CopyIDString]Copy),
	}
}

// GetBook returns a book with its copy count.
func (c *MemoryCatalog) GetBook(_ context.Context, bookID core.BookIDString) (Book, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	book, ok := c.books[bookID]
	if !ok {
		return Book{}, core.ErrBookNotFound
	}

	book.TotalCopies = len(c.copiesOf(bookID))

	return book, nil
}

// ListCopies returns the copies of a book ordered by id.
func (c *MemoryCatalog) ListCopies(_ context.Context, bookID core.BookIDString) ([]Copy, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.books[bookID]; !ok {
		return nil, core.ErrBookNotFound
	}

	return c.copiesOf(bookID), nil
}

// ListBooks returns every book ordered by id.
func (c *MemoryCatalog) ListBooks(_ context.Context) ([]Book, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	books := make([]Book, 0, len(c.books))
	for _, book := range c.books {
		book.TotalCopies = len(c.copiesOf(book.ID))
		books = append(books, book)
	}

	slices.SortFunc(books, func(a, b Book) int { return cmp.Compare(a.ID, b.ID) })

	return books, nil
}

// SaveBook inserts or updates a book.
func (c *MemoryCatalog) SaveBook(_ context.Context, book Book) error {
	if err := validateRecord(book); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	book.TotalCopies = 0
	c.books[book.ID] = book

	return nil
}

// SaveCopy registers a copy. Saving it again for the same book updates the shelf location.
func (c *MemoryCatalog) SaveCopy(_ context.Context, cp Copy) error {
	if err := validateRecord(cp); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.books[cp.BookID]; !ok {
		return core.ErrBookNotFound
	}

	if existing, ok := c.copies[cp.ID]; ok && existing.BookID != cp.BookID {
		return core.ErrCopyBelongsToAnotherBook
	}

	c.copies[cp.ID] = cp

	return nil
}

func (c *MemoryCatalog) copiesOf(bookID core.BookIDString) []Copy {
	copies := make([]Copy, 0)
	for _, cp := range c.copies {
		if cp.BookID == bookID {
			copies = append(copies, cp)
		}
	}

	slices.SortFunc(copies, func(a, b Copy) int { return cmp.Compare(a.ID, b.ID) })

	return copies
}
