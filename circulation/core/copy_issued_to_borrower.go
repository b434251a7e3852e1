package core

import (
	"time"
)

// CopyIssuedToBorrowerEventType is the event type identifier.
const CopyIssuedToBorrowerEventType = "CopyIssuedToBorrower"

// CopyIssuedToBorrower records an issue: the copy moves to Issued and an issue record is opened.
// OccurredAt is the issue date.
type CopyIssuedToBorrower struct {
	EventType  EventTypeString
	IssueID    IssueIDString
	CopyID     CopyIDString
	BookID     BookIDString
	BorrowerID BorrowerIDString
	DueDate    time.Time
	OccurredAt OccurredAt
}

// BuildCopyIssuedToBorrower creates a new CopyIssuedToBorrower event.
func BuildCopyIssuedToBorrower(
	issueID IssueIDString,
	copyID CopyIDString,
	bookID BookIDString,
	borrowerID BorrowerIDString,
	issueDate time.Time,
	dueDate time.Time,
) CopyIssuedToBorrower {

	return CopyIssuedToBorrower{
		EventType:  CopyIssuedToBorrowerEventType,
		IssueID:    issueID,
		CopyID:     copyID,
		BookID:     bookID,
		BorrowerID: borrowerID,
		DueDate:    ToOccurredAt(dueDate),
		OccurredAt: ToOccurredAt(issueDate),
	}
}

// IsEventType returns the event type identifier.
func (e CopyIssuedToBorrower) IsEventType() string {
	return CopyIssuedToBorrowerEventType
}

// HasOccurredAt returns when this event occurred.
func (e CopyIssuedToBorrower) HasOccurredAt() time.Time {
	return e.OccurredAt
}
