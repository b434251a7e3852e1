package overdue

import (
	"time"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

// OverdueIssue is an open issue with its projected fine.
type OverdueIssue struct {
	core.IssueRecord
	OverdueDays   int
	ProjectedFine core.Amount
}

// OverdueIssues represents the query result, most overdue first.
type OverdueIssues struct {
	AsOf                time.Time
	Issues              []OverdueIssue
	Count               int
	TotalProjectedFines core.Amount
	SequenceNumber      uint
}

// GetSequenceNumber returns the sequence number of the newest event in the result.
func (r OverdueIssues) GetSequenceNumber() uint {
	return r.SequenceNumber
}
