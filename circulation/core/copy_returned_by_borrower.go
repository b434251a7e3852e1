package core

import (
	"time"
)

// CopyReturnedByBorrowerEventType is the event type identifier.
const CopyReturnedByBorrowerEventType = "CopyReturnedByBorrower"

// CopyReturnedByBorrower records a return: the issue record is closed with its fine
// and the copy leaves Issued according to Condition. OccurredAt is the return date.
type CopyReturnedByBorrower struct {
	EventType   EventTypeString
	IssueID     IssueIDString
	CopyID      CopyIDString
	BookID      BookIDString
	BorrowerID  BorrowerIDString
	DueDate     time.Time
	OverdueDays int
	FineAmount  Amount
	Condition   ReturnCondition
	OccurredAt  OccurredAt
}

// BuildCopyReturnedByBorrower creates a new CopyReturnedByBorrower event.
func BuildCopyReturnedByBorrower(
	issue IssueRecord,
	returnDate time.Time,
	assessment FineAssessment,
	condition ReturnCondition,
) CopyReturnedByBorrower {

	return CopyReturnedByBorrower{
		EventType:   CopyReturnedByBorrowerEventType,
		IssueID:     issue.IssueID,
		CopyID:      issue.CopyID,
		BookID:      issue.BookID,
		BorrowerID:  issue.BorrowerID,
		DueDate:     issue.DueDate,
		OverdueDays: assessment.OverdueDays,
		FineAmount:  assessment.Fine,
		Condition:   condition,
		OccurredAt:  ToOccurredAt(returnDate),
	}
}

// IsEventType returns the event type identifier.
func (e CopyReturnedByBorrower) IsEventType() string {
	return CopyReturnedByBorrowerEventType
}

// HasOccurredAt returns when this event occurred.
func (e CopyReturnedByBorrower) HasOccurredAt() time.Time {
	return e.OccurredAt
}
