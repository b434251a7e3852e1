package core

import (
	"slices"
)

// Availability is the per-book count snapshot.
type Availability struct {
	BookID    BookIDString
	Total     int
	Available int
	Issued    int
	Damaged   int
	Lost      int
}

// Consistent reports whether the per-status counts add up to Total.
func (a Availability) Consistent() bool {
	return a.Available+a.Issued+a.Damaged+a.Lost == a.Total
}

func (a *Availability) count(status CopyStatus) {
	a.Total++

	switch status {
	case StatusAvailable:
		a.Available++
	case StatusIssued:
		a.Issued++
	case StatusDamaged:
		a.Damaged++
	case StatusLost:
		a.Lost++
	}
}

// AvailabilityOf derives the counts of one book from inventory state only.
func AvailabilityOf(inv *CopyInventory, bookID BookIDString) Availability {
	availability := Availability{BookID: bookID}
	for _, rec := range inv.CopiesOf(bookID) {
		availability.count(rec.Status)
	}

	return availability
}

// AvailabilityIndex holds the counts of every book in an inventory.
type AvailabilityIndex struct {
	books map[BookIDString]*Availability
}

// BuildAvailabilityIndex recomputes the index from scratch.
func BuildAvailabilityIndex(inv *CopyInventory) AvailabilityIndex {
	index := AvailabilityIndex{books: make(map[BookIDString]*Availability)}
	for _, rec := range inv.All() {
		availability, ok := index.books[rec.BookID]
		if !ok {
			availability = &Availability{BookID: rec.BookID}
			index.books[rec.BookID] = availability
		}
		availability.count(rec.Status)
	}

	return index
}

// Get returns the counts of one book, zero counts if unknown.
func (x AvailabilityIndex) Get(bookID BookIDString) Availability {
	if availability, ok := x.books[bookID]; ok {
		return *availability
	}

	return Availability{BookID: bookID}
}

// Books returns all entries ordered by book id.
func (x AvailabilityIndex) Books() []Availability {
	books := make([]Availability, 0, len(x.books))
	for _, availability := range x.books {
		books = append(books, *availability)
	}

	slices.SortFunc(books, func(a, b Availability) int {
		switch {
		case a.BookID < b.BookID:
			return -1
		case a.BookID > b.BookID:
			return 1
		default:
			return 0
		}
	})

	return books
}
