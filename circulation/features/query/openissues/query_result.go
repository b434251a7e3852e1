package openissues

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

// OpenIssues represents the query result, ordered by issue date.
type OpenIssues struct {
	BorrowerID     core.BorrowerIDString
	Issues         []core.IssueRecord
	Count          int
	SequenceNumber uint
}

// GetSequenceNumber returns the sequence number of the newest event in the result.
func (r OpenIssues) GetSequenceNumber() uint {
	return r.SequenceNumber
}
