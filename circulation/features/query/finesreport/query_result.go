package finesreport

import (
	"time"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

// BorrowerFines sums the fines of one borrower.
type BorrowerFines struct {
	BorrowerID  core.BorrowerIDString
	Returns     int
	LateReturns int
	TotalFines  core.Amount
}

// FinesReport represents the query result. Borrowers are ordered by fines, highest first.
type FinesReport struct {
	From           time.Time
	Until          time.Time
	Returns        int
	LateReturns    int
	TotalFines     core.Amount
	Borrowers      []BorrowerFines
	SequenceNumber uint
}

// GetSequenceNumber returns the sequence number of the newest event in the result.
func (r FinesReport) GetSequenceNumber() uint {
	return r.SequenceNumber
}
