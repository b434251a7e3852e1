package core

import (
	"time"
)

// CopyMarkedDamagedEventType is the event type identifier.
const CopyMarkedDamagedEventType = "CopyMarkedDamaged"

// CopyMarkedDamaged records an administrative damage mark outside of a return.
type CopyMarkedDamaged struct {
	EventType  EventTypeString
	CopyID     CopyIDString
	BookID     BookIDString
	Reason     string
	OccurredAt OccurredAt
}

// BuildCopyMarkedDamaged creates a new CopyMarkedDamaged event.
func BuildCopyMarkedDamaged(copyID CopyIDString, bookID BookIDString, reason string, occurredAt time.Time) CopyMarkedDamaged {
	return CopyMarkedDamaged{
		EventType:  CopyMarkedDamagedEventType,
		CopyID:     copyID,
		BookID:     bookID,
		Reason:     reason,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e CopyMarkedDamaged) IsEventType() string {
	return CopyMarkedDamagedEventType
}

// HasOccurredAt returns when this event occurred.
func (e CopyMarkedDamaged) HasOccurredAt() time.Time {
	return e.OccurredAt
}
