package availability

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

// Availabilities represents the query result, ordered by book id.
type Availabilities struct {
	Books          []core.Availability
	SequenceNumber uint
}

// For returns the counts of one book, zero counts if it has no copies.
func (r Availabilities) For(bookID core.BookIDString) core.Availability {
	for _, a := range r.Books {
		if a.BookID == bookID {
			return a
		}
	}

	return core.Availability{BookID: bookID}
}

// GetSequenceNumber returns the sequence number of the newest event in the result.
func (r Availabilities) GetSequenceNumber() uint {
	return r.SequenceNumber
}
