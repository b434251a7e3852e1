package core

import (
	"time"
)

// CopyIDString identifies a physical copy.
type CopyIDString = string

// BookIDString identifies a catalog title.
type BookIDString = string

// BorrowerIDString identifies a student or staff member.
type BorrowerIDString = string

// IssueIDString identifies one issue record.
type IssueIDString = string

// EventTypeString is the persisted event type name.
type EventTypeString = string

// OccurredAt represents when an event occurred.
type OccurredAt = time.Time

// Payload keys the event store filters on.
const (
	CopyIDKey     = "CopyID"
	BookIDKey     = "BookID"
	BorrowerIDKey = "BorrowerID"
	IssueIDKey    = "IssueID"
)

// ToOccurredAt converts a time to OccurredAt with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAt {
	return t.UTC().Truncate(time.Microsecond)
}

// DueDateFor returns issueDate plus loanPeriodDays calendar days.
func DueDateFor(issueDate time.Time, loanPeriodDays int) time.Time {
	return ToOccurredAt(issueDate).AddDate(0, 0, loanPeriodDays)
}
