package shell

import (
	"errors"
	"fmt"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

var ErrEventEnvelopeFromStorableEventFailed = errors.New("event envelope from storable event failed")

// EventEnvelope pairs a domain event with who did it and why. Projections that show history,
// such as copy status, read envelopes instead of bare events.
type EventEnvelope struct {
	DomainEvent   core.DomainEvent
	EventMetadata EventMetadata
}

type EventEnvelopes = []EventEnvelope

func EventEnvelopeFrom(storable eventstore.StorableEvent) (EventEnvelope, error) {
	var (
		envelope EventEnvelope
		err      error
	)

	if envelope.EventMetadata, err = EventMetadataFrom(storable); err != nil {
		return EventEnvelope{}, errors.Join(ErrEventEnvelopeFromStorableEventFailed, err)
	}
	if envelope.DomainEvent, err = DomainEventFrom(storable); err != nil {
		return EventEnvelope{}, errors.Join(ErrEventEnvelopeFromStorableEventFailed, err)
	}

	return envelope, nil
}

// EventEnvelopesFrom stops at the first event that cannot be mapped.
func EventEnvelopesFrom(storables eventstore.StorableEvents) (EventEnvelopes, error) {
	envelopes := make(EventEnvelopes, len(storables))

	for i := range storables {
		envelope, err := EventEnvelopeFrom(storables[i])
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i, storables[i].EventType, err)
		}
		envelopes[i] = envelope
	}

	return envelopes, nil
}
