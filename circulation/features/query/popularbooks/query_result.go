package popularbooks

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

// BookIssues counts the issues of one book.
type BookIssues struct {
	BookID            core.BookIDString
	IssueCount        int
	DistinctBorrowers int
}

// PopularBooks represents the query result, most issued first.
type PopularBooks struct {
	Books          []BookIssues
	SequenceNumber uint
}

// GetSequenceNumber returns the sequence number of the newest event in the result.
func (r PopularBooks) GetSequenceNumber() uint {
	return r.SequenceNumber
}
