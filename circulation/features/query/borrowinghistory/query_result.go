package borrowinghistory

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

// BorrowingHistory represents the query result. Issues are ordered by issue date.
type BorrowingHistory struct {
	BorrowerID     core.BorrowerIDString
	Issues         []core.IssueRecord
	OpenCount      int
	ReturnedCount  int
	LateReturns    int
	TotalFines     core.Amount
	SequenceNumber uint
}

// GetSequenceNumber returns the sequence number of the newest event in the result.
func (r BorrowingHistory) GetSequenceNumber() uint {
	return r.SequenceNumber
}
