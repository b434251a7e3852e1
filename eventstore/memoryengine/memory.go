package memoryengine

import (
	"context"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore/internal/observe"
)

const (
	engineName              = "memory"
	errorTypeContextDone    = "context_done"
	errorTypeInvalidPayload = "invalid_payload"
	logMsgContextDone       = "operation aborted before it started"
	logMsgPayloadDecode     = "failed to decode event payload"
)

type storedEvent struct {
	sequenceNumber eventstore.MaxSequenceNumberUint
	event          eventstore.StorableEvent
	payload        map[string]any
}

// EventStore keeps all events in memory. The zero value is not usable, use NewEventStore.
type EventStore struct {
	mu          sync.RWMutex
	events      []storedEvent
	instruments observe.Instruments
}

// NewEventStore creates an empty EventStore.
func NewEventStore(options ...Option) (*EventStore, error) {
	es := &EventStore{
		instruments: observe.Instruments{Engine: engineName},
	}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// Query returns all events matching filter in append order, together with the highest sequence
// number among them (0 if none match).
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	ctx, observation := es.instruments.StartQuery(ctx)

	if err := ctx.Err(); err != nil {
		observation.Failed(errorTypeContextDone, logMsgContextDone, err)
		return eventstore.StorableEvents{}, 0, errorsJoinQuery(err)
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	eventStream := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for _, stored := range es.events {
		if !matches(filter, stored) {
			continue
		}

		eventStream = append(eventStream, stored.event)
		maxSequenceNumber = stored.sequenceNumber
	}

	observation.QuerySucceeded(len(eventStream), maxSequenceNumber)

	return eventStream, maxSequenceNumber, nil
}

// Append stores the events if no event matching filter has a sequence number higher than
// expectedMaxSequenceNumber. Otherwise, it returns eventstore.ErrConcurrencyConflict and stores nothing.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	allEvents := eventstore.StorableEvents{event}
	allEvents = append(allEvents, additionalEvents...)

	ctx, observation := es.instruments.StartAppend(ctx, allEvents, expectedMaxSequenceNumber)

	if err := ctx.Err(); err != nil {
		observation.Failed(errorTypeContextDone, logMsgContextDone, err)
		return errorsJoinAppend(err)
	}

	decoded := make([]map[string]any, len(allEvents))
	for i, e := range allEvents {
		payload := make(map[string]any)
		if err := jsoniter.ConfigFastest.Unmarshal(e.PayloadJSON, &payload); err != nil {
			observation.Failed(errorTypeInvalidPayload, logMsgPayloadDecode, err, observe.AttrEventType, e.EventType)
			return errorsJoinAppend(err)
		}

		decoded[i] = payload
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	currentMaxSequenceNumber := eventstore.MaxSequenceNumberUint(0)
	for _, stored := range es.events {
		if matches(filter, stored) {
			currentMaxSequenceNumber = stored.sequenceNumber
		}
	}

	if currentMaxSequenceNumber != expectedMaxSequenceNumber {
		observation.ConcurrencyConflict(expectedMaxSequenceNumber)
		return eventstore.ErrConcurrencyConflict
	}

	for i, e := range allEvents {
		es.events = append(es.events, storedEvent{
			sequenceNumber: eventstore.MaxSequenceNumberUint(len(es.events) + 1),
			event:          e,
			payload:        decoded[i],
		})
	}

	observation.AppendSucceeded(len(allEvents))

	return nil
}

// Len returns the number of stored events.
func (es *EventStore) Len() int {
	es.mu.RLock()
	defer es.mu.RUnlock()

	return len(es.events)
}
