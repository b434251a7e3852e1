package core

import (
	"time"
)

// CopyMarkedLostEventType is the event type identifier.
const CopyMarkedLostEventType = "CopyMarkedLost"

// CopyMarkedLost records an administrative loss. Lost is terminal.
type CopyMarkedLost struct {
	EventType  EventTypeString
	CopyID     CopyIDString
	BookID     BookIDString
	Reason     string
	OccurredAt OccurredAt
}

// BuildCopyMarkedLost creates a new CopyMarkedLost event.
func BuildCopyMarkedLost(copyID CopyIDString, bookID BookIDString, reason string, occurredAt time.Time) CopyMarkedLost {
	return CopyMarkedLost{
		EventType:  CopyMarkedLostEventType,
		CopyID:     copyID,
		BookID:     bookID,
		Reason:     reason,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e CopyMarkedLost) IsEventType() string {
	return CopyMarkedLostEventType
}

// HasOccurredAt returns when this event occurred.
func (e CopyMarkedLost) HasOccurredAt() time.Time {
	return e.OccurredAt
}
