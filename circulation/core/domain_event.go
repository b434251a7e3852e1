package core

import (
	"time"
)

// DomainEvents is a slice of DomainEvent instances.
type DomainEvents = []DomainEvent

// DomainEvent represents a circulation fact that has been recorded.
type DomainEvent interface {
	// IsEventType returns the string identifier for this event type.
	IsEventType() string

	// HasOccurredAt returns the business time of the event.
	HasOccurredAt() time.Time
}

// AllEventTypes lists every event type the circulation engine writes.
func AllEventTypes() []string {
	return []string{
		CopyAddedToCirculationEventType,
		CopyIssuedToBorrowerEventType,
		CopyReturnedByBorrowerEventType,
		CopyMarkedDamagedEventType,
		CopyMarkedLostEventType,
	}
}
