package core

import (
	"slices"
)

// CopyRecord is the inventory entry of one physical copy.
type CopyRecord struct {
	CopyID        CopyIDString
	BookID        BookIDString
	ShelfLocation string
	Status        CopyStatus
}

// CopyInventory tracks the lifecycle status of each copy.
//
// It is a plain value folded from events inside a single Decide or projection call.
// Atomicity across callers comes from the conditional append, not from this type.
type CopyInventory struct {
	copies map[CopyIDString]*CopyRecord
}

// NewCopyInventory returns an empty inventory.
func NewCopyInventory() *CopyInventory {
	return &CopyInventory{copies: make(map[CopyIDString]*CopyRecord)}
}

// ProjectCopyInventory folds history into an inventory.
func ProjectCopyInventory(history DomainEvents) *CopyInventory {
	inv := NewCopyInventory()
	for _, event := range history {
		inv.Apply(event)
	}

	return inv
}

// Apply evolves the inventory by one recorded event. The log is the source of truth,
// so Apply forces the resulting status instead of checking transitions.
func (inv *CopyInventory) Apply(event DomainEvent) {
	switch e := event.(type) {
	case CopyAddedToCirculation:
		if rec, ok := inv.copies[e.CopyID]; ok {
			if rec.ShelfLocation == "" {
				rec.ShelfLocation = e.ShelfLocation
			}
			return
		}
		inv.copies[e.CopyID] = &CopyRecord{
			CopyID:        e.CopyID,
			BookID:        e.BookID,
			ShelfLocation: e.ShelfLocation,
			Status:        StatusAvailable,
		}

	case CopyIssuedToBorrower:
		inv.ensure(e.CopyID, e.BookID).Status = StatusIssued

	case CopyReturnedByBorrower:
		rec := inv.ensure(e.CopyID, e.BookID)
		switch e.Condition {
		case ConditionDamaged:
			rec.Status = StatusDamaged
		case ConditionLost:
			rec.Status = StatusLost
		default:
			rec.Status = StatusAvailable
		}

	case CopyMarkedDamaged:
		inv.ensure(e.CopyID, e.BookID).Status = StatusDamaged

	case CopyMarkedLost:
		inv.ensure(e.CopyID, e.BookID).Status = StatusLost
	}
}

// ensure covers histories that were filtered by borrower and miss the copy's add event.
func (inv *CopyInventory) ensure(copyID CopyIDString, bookID BookIDString) *CopyRecord {
	rec, ok := inv.copies[copyID]
	if !ok {
		rec = &CopyRecord{CopyID: copyID, BookID: bookID, Status: StatusAvailable}
		inv.copies[copyID] = rec
	}

	return rec
}

// AddCopy registers a new copy as Available.
// Adding an existing copy for the same book is a no-op, for another book it fails.
func (inv *CopyInventory) AddCopy(copyID CopyIDString, bookID BookIDString, shelfLocation string) (added bool, err error) {
	if rec, ok := inv.copies[copyID]; ok {
		if rec.BookID != bookID {
			return false, ErrCopyBelongsToAnotherBook
		}
		return false, nil
	}

	inv.copies[copyID] = &CopyRecord{
		CopyID:        copyID,
		BookID:        bookID,
		ShelfLocation: shelfLocation,
		Status:        StatusAvailable,
	}

	return true, nil
}

// Copy returns a snapshot of one copy.
func (inv *CopyInventory) Copy(copyID CopyIDString) (CopyRecord, bool) {
	rec, ok := inv.copies[copyID]
	if !ok {
		return CopyRecord{}, false
	}

	return *rec, true
}

// GetStatus returns the status of a copy or ErrCopyNotFound.
func (inv *CopyInventory) GetStatus(copyID CopyIDString) (CopyStatus, error) {
	rec, ok := inv.copies[copyID]
	if !ok {
		return "", ErrCopyNotFound
	}

	return rec.Status, nil
}

// TryReserve moves an Available copy to Issued.
func (inv *CopyInventory) TryReserve(copyID CopyIDString) error {
	rec, ok := inv.copies[copyID]
	if !ok {
		return ErrCopyNotFound
	}

	if rec.Status != StatusAvailable {
		return ErrCopyNotAvailable
	}

	rec.Status = StatusIssued

	return nil
}

// Release moves an Issued copy back to Available.
func (inv *CopyInventory) Release(copyID CopyIDString) error {
	rec, ok := inv.copies[copyID]
	if !ok {
		return ErrCopyNotFound
	}

	if rec.Status != StatusIssued {
		return ErrCopyNotIssued
	}

	rec.Status = StatusAvailable

	return nil
}

// MarkDamaged is allowed from every status except Lost.
func (inv *CopyInventory) MarkDamaged(copyID CopyIDString) error {
	return inv.mark(copyID, StatusDamaged)
}

// MarkLost is allowed from every status except Lost.
func (inv *CopyInventory) MarkLost(copyID CopyIDString) error {
	return inv.mark(copyID, StatusLost)
}

func (inv *CopyInventory) mark(copyID CopyIDString, status CopyStatus) error {
	rec, ok := inv.copies[copyID]
	if !ok {
		return ErrCopyNotFound
	}

	if rec.Status == StatusLost {
		return ErrCopyAlreadyLost
	}

	rec.Status = status

	return nil
}

// CopiesOf returns the copies of one book ordered by copy id.
func (inv *CopyInventory) CopiesOf(bookID BookIDString) []CopyRecord {
	copies := make([]CopyRecord, 0)
	for _, rec := range inv.copies {
		if rec.BookID == bookID {
			copies = append(copies, *rec)
		}
	}

	slices.SortFunc(copies, compareCopies)

	return copies
}

// All returns every copy ordered by book id, then copy id.
func (inv *CopyInventory) All() []CopyRecord {
	copies := make([]CopyRecord, 0, len(inv.copies))
	for _, rec := range inv.copies {
		copies = append(copies, *rec)
	}

	slices.SortFunc(copies, func(a, b CopyRecord) int {
		if a.BookID != b.BookID {
			if a.BookID < b.BookID {
				return -1
			}
			return 1
		}
		return compareCopies(a, b)
	})

	return copies
}

// Len returns the number of copies.
func (inv *CopyInventory) Len() int {
	return len(inv.copies)
}

func compareCopies(a, b CopyRecord) int {
	switch {
	case a.CopyID < b.CopyID:
		return -1
	case a.CopyID > b.CopyID:
		return 1
	default:
		return 0
	}
}
