package catalog

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

// ErrInvalidRecord is joined with the validation errors of a rejected book or copy.
var ErrInvalidRecord = errors.New("invalid catalog record")

// Book is a catalog title. TotalCopies is derived from the registered copies.
type Book struct {
	ID          core.BookIDString `db:"id" json:"id" validate:"required,max=64"`
	Title       string            `db:"title" json:"title" validate:"required,max=512"`
	Author      string            `db:"author" json:"author" validate:"max=256"`
	Category    string            `db:"category" json:"category" validate:"max=128"`
	ISBN        string            `db:"isbn" json:"isbn,omitempty" validate:"omitempty,max=17"`
	TotalCopies int               `db:"total_copies" json:"totalCopies"`
}

// Copy is a physical item of a book.
type Copy struct {
	ID            core.CopyIDString `db:"id" json:"id" validate:"required,max=64"`
	BookID        core.BookIDString `db:"book_id" json:"bookId" validate:"required,max=64"`
	ShelfLocation string            `db:"shelf_location" json:"shelfLocation" validate:"max=64"`
}

// Catalog is the read side used by the circulation service.
type Catalog interface {
	GetBook(ctx context.Context, bookID core.BookIDString) (Book, error)
	ListCopies(ctx context.Context, bookID core.BookIDString) ([]Copy, error)
	ListBooks(ctx context.Context) ([]Book, error)
}

// Store is a Catalog that can be written to, by imports and administration.
type Store interface {
	Catalog
	SaveBook(ctx context.Context, book Book) error
	SaveCopy(ctx context.Context, c Copy) error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateRecord(record any) error {
	if err := validate.Struct(record); err != nil {
		return errors.Join(ErrInvalidRecord, err)
	}

	return nil
}
