package copystatus

import (
	"time"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

// HistoryEntry is one event in the audit trail of a copy.
type HistoryEntry struct {
	EventType     string
	OccurredAt    time.Time
	CorrelationID string
	Actor         string
}

// CopyStatus represents the query result.
type CopyStatus struct {
	CopyID         core.CopyIDString
	BookID         core.BookIDString
	ShelfLocation  string
	Status         core.CopyStatus
	OpenIssue      *core.IssueRecord
	History        []HistoryEntry
	SequenceNumber uint
}

// GetSequenceNumber returns the sequence number of the newest event in the result.
func (r CopyStatus) GetSequenceNumber() uint {
	return r.SequenceNumber
}
