package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) {
	switch storableEvent.EventType {
	case core.CopyAddedToCirculationEventType:
		return unmarshalInto[core.CopyAddedToCirculation](storableEvent.PayloadJSON)

	case core.CopyIssuedToBorrowerEventType:
		return unmarshalInto[core.CopyIssuedToBorrower](storableEvent.PayloadJSON)

	case core.CopyReturnedByBorrowerEventType:
		return unmarshalInto[core.CopyReturnedByBorrower](storableEvent.PayloadJSON)

	case core.CopyMarkedDamagedEventType:
		return unmarshalInto[core.CopyMarkedDamaged](storableEvent.PayloadJSON)

	case core.CopyMarkedLostEventType:
		return unmarshalInto[core.CopyMarkedLost](storableEvent.PayloadJSON)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshalInto[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	var event E

	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &event); err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return event, nil
}
