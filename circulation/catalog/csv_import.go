package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedCSV is returned for a missing header column or a short row.
var ErrMalformedCSV = errors.New("malformed catalog csv")

var csvColumns = []string{"book_id", "title", "author", "category", "isbn", "copy_id", "shelf_location"}

// ImportSummary counts what an import wrote.
type ImportSummary struct {
	Books  int
	Copies int
}

// ImportCSV reads one row per copy and saves books and copies into store.
// The header must name the columns book_id, title, author, category, isbn, copy_id, shelf_location
// in any order. Rows without copy_id only save the book. Rows are applied in order, an import that
// fails halfway keeps what it wrote.
func ImportCSV(ctx context.Context, r io.Reader, store Store) (ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return ImportSummary{}, errors.Join(ErrMalformedCSV, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, column := range csvColumns {
		if _, ok := index[column]; !ok {
			return ImportSummary{}, fmt.Errorf("%w: missing column %q", ErrMalformedCSV, column)
		}
	}

	var summary ImportSummary
	seenBooks := make(map[string]struct{})

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return summary, nil
		}
		if err != nil {
			return summary, errors.Join(ErrMalformedCSV, err)
		}

		field := func(column string) string {
			return strings.TrimSpace(record[index[column]])
		}

		bookID := field("book_id")
		if _, seen := seenBooks[bookID]; !seen {
			book := Book{
				ID:       bookID,
				Title:    field("title"),
				Author:   field("author"),
				Category: field("category"),
				ISBN:     field("isbn"),
			}
			if err := store.SaveBook(ctx, book); err != nil {
				return summary, fmt.Errorf("line %d: %w", line, err)
			}
			seenBooks[bookID] = struct{}{}
			summary.Books++
		}

		copyID := field("copy_id")
		if copyID == "" {
			continue
		}

		if err := store.SaveCopy(ctx, Copy{ID: copyID, BookID: bookID, ShelfLocation: field("shelf_location")}); err != nil {
			return summary, fmt.Errorf("line %d: %w", line, err)
		}
		summary.Copies++
	}
}
