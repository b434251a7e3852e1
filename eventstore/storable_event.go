package eventstore

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrInvalidPayloadJSON  = errors.New("payload json is not valid")
	ErrInvalidMetadataJSON = errors.New("metadata json is not valid")
)

type StorableEvents = []StorableEvent

// StorableEvent is what engines append and return: an event type, the business time it
// happened at, and two JSON documents. Engines never look inside the documents beyond the
// top level payload keys that filter predicates name.
type StorableEvent struct {
	EventType    string
	OccurredAt   time.Time
	PayloadJSON  []byte
	MetadataJSON []byte
}

// BuildStorableEvent fails when either document is not valid JSON.
func BuildStorableEvent(eventType string, occurredAt time.Time, payloadJSON, metadataJSON []byte) (StorableEvent, error) {
	switch {
	case !jsoniter.Valid(payloadJSON):
		return StorableEvent{}, ErrInvalidPayloadJSON
	case !jsoniter.Valid(metadataJSON):
		return StorableEvent{}, ErrInvalidMetadataJSON
	}

	return StorableEvent{EventType: eventType, OccurredAt: occurredAt, PayloadJSON: payloadJSON, MetadataJSON: metadataJSON}, nil
}

// BuildStorableEventWithEmptyMetadata stores "{}" as metadata.
func BuildStorableEventWithEmptyMetadata(eventType string, occurredAt time.Time, payloadJSON []byte) (StorableEvent, error) {
	return BuildStorableEvent(eventType, occurredAt, payloadJSON, []byte(`{}`))
}
