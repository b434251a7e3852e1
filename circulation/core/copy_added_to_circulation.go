package core

import (
	"time"
)

// CopyAddedToCirculationEventType is the event type identifier.
const CopyAddedToCirculationEventType = "CopyAddedToCirculation"

// CopyAddedToCirculation records that a catalog copy entered the inventory as Available.
type CopyAddedToCirculation struct {
	EventType     EventTypeString
	CopyID        CopyIDString
	BookID        BookIDString
	ShelfLocation string
	OccurredAt    OccurredAt
}

// BuildCopyAddedToCirculation creates a new CopyAddedToCirculation event.
func BuildCopyAddedToCirculation(
	copyID CopyIDString,
	bookID BookIDString,
	shelfLocation string,
	occurredAt time.Time,
) CopyAddedToCirculation {

	return CopyAddedToCirculation{
		EventType:     CopyAddedToCirculationEventType,
		CopyID:        copyID,
		BookID:        bookID,
		ShelfLocation: shelfLocation,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e CopyAddedToCirculation) IsEventType() string {
	return CopyAddedToCirculationEventType
}

// HasOccurredAt returns when this event occurred.
func (e CopyAddedToCirculation) HasOccurredAt() time.Time {
	return e.OccurredAt
}
