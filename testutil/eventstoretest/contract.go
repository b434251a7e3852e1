// Package eventstoretest holds the behavior every event store engine must show.
// Engine test packages call RunContractTests with a factory for a fresh, empty store.
package eventstoretest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// EventStore is the engine surface under test.
type EventStore interface {
	Query(ctx context.Context, filter eventstore.Filter) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint, error)
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// Factory returns an empty store, registering its cleanup on t.
type Factory func(t *testing.T) EventStore

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// RunContractTests runs the engine contract as subtests.
//
//nolint:funlen
func RunContractTests(t *testing.T, newStore Factory) {
	t.Run("query_on_empty_store_returns_nothing", func(t *testing.T) {
		es := newStore(t)

		events, maxSeq, err := es.Query(context.Background(), copyFilter("copy-1"))

		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Equal(t, eventstore.MaxSequenceNumberUint(0), maxSeq)
	})

	t.Run("appended_events_are_returned_in_order", func(t *testing.T) {
		es := newStore(t)
		ctx := context.Background()
		filter := copyFilter("copy-1")

		// arrange
		appendOne(t, es, filter, 0, storable(t, "CopyAddedToCirculation", "copy-1", "book-1", "", baseTime))
		_, maxSeq, err := es.Query(ctx, filter)
		require.NoError(t, err)
		appendOne(t, es, filter, maxSeq, storable(t, "CopyIssuedToBorrower", "copy-1", "book-1", "borrower-1", baseTime.Add(time.Hour)))

		// act
		events, maxSeq, err := es.Query(ctx, filter)

		// assert
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "CopyAddedToCirculation", events[0].EventType)
		assert.Equal(t, "CopyIssuedToBorrower", events[1].EventType)
		assert.True(t, baseTime.Add(time.Hour).Equal(events[1].OccurredAt), "occurredAt must survive the round trip")
		assert.JSONEq(t, string(storable(t, "CopyIssuedToBorrower", "copy-1", "book-1", "borrower-1", baseTime).PayloadJSON), string(events[1].PayloadJSON))
		assert.Positive(t, maxSeq)
	})

	t.Run("filters_by_event_type_and_predicates", func(t *testing.T) {
		es := newStore(t)
		ctx := context.Background()

		// arrange
		seed(t, es,
			storable(t, "CopyAddedToCirculation", "copy-1", "book-1", "", baseTime),
			storable(t, "CopyAddedToCirculation", "copy-2", "book-1", "", baseTime),
			storable(t, "CopyAddedToCirculation", "copy-3", "book-2", "", baseTime),
			storable(t, "CopyIssuedToBorrower", "copy-1", "book-1", "borrower-1", baseTime.Add(time.Hour)),
			storable(t, "CopyIssuedToBorrower", "copy-3", "book-2", "borrower-2", baseTime.Add(2*time.Hour)),
		)

		testCases := []struct {
			name     string
			filter   eventstore.Filter
			expected int
		}{
			{name: "any_event", filter: eventstore.BuildEventFilter().MatchingAnyEvent(), expected: 5},
			{
				name:     "event_type_only",
				filter:   eventstore.BuildEventFilter().Matching().AnyEventTypeOf("CopyIssuedToBorrower").Finalize(),
				expected: 2,
			},
			{
				name: "event_type_and_any_predicate",
				filter: eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("CopyAddedToCirculation").
					AndAnyPredicateOf(eventstore.P("CopyID", "copy-1"), eventstore.P("CopyID", "copy-3")).
					Finalize(),
				expected: 2,
			},
			{
				name: "all_predicates",
				filter: eventstore.BuildEventFilter().
					Matching().
					AllPredicatesOf(eventstore.P("BookID", "book-1"), eventstore.P("CopyID", "copy-1")).
					Finalize(),
				expected: 2,
			},
			{
				name: "copy_or_borrower_boundary",
				filter: eventstore.BuildEventFilter().
					Matching().
					AnyPredicateOf(eventstore.P("CopyID", "copy-2"), eventstore.P("BorrowerID", "borrower-2")).
					Finalize(),
				expected: 2,
			},
			{
				name: "or_matching_items",
				filter: eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("CopyAddedToCirculation").
					AndAnyPredicateOf(eventstore.P("BookID", "book-2")).
					OrMatching().
					AnyEventTypeOf("CopyIssuedToBorrower").
					AndAnyPredicateOf(eventstore.P("BorrowerID", "borrower-1")).
					Finalize(),
				expected: 2,
			},
			{
				name: "time_boundaries",
				filter: eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("CopyIssuedToBorrower").
					OccurredFrom(baseTime.Add(90 * time.Minute)).
					AndOccurredUntil(baseTime.Add(3 * time.Hour)).
					Finalize(),
				expected: 1,
			},
			{
				name:     "unknown_value",
				filter:   copyFilter("copy-unknown"),
				expected: 0,
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				events, _, err := es.Query(ctx, tc.filter)

				require.NoError(t, err)
				assert.Len(t, events, tc.expected)
			})
		}
	})

	t.Run("append_with_stale_sequence_number_is_a_conflict", func(t *testing.T) {
		es := newStore(t)
		ctx := context.Background()
		filter := copyFilter("copy-1")

		// arrange
		appendOne(t, es, filter, 0, storable(t, "CopyAddedToCirculation", "copy-1", "book-1", "", baseTime))

		// act
		err := es.Append(ctx, filter, 0, storable(t, "CopyIssuedToBorrower", "copy-1", "book-1", "borrower-1", baseTime))

		// assert
		assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
		events, _, queryErr := es.Query(ctx, filter)
		require.NoError(t, queryErr)
		assert.Len(t, events, 1, "a conflicting append must not store anything")
	})

	t.Run("events_outside_the_boundary_do_not_conflict", func(t *testing.T) {
		es := newStore(t)
		ctx := context.Background()

		// arrange
		_, maxSeq, err := es.Query(ctx, copyFilter("copy-1"))
		require.NoError(t, err)
		appendOne(t, es, copyFilter("copy-2"), 0, storable(t, "CopyAddedToCirculation", "copy-2", "book-1", "", baseTime))

		// act
		err = es.Append(ctx, copyFilter("copy-1"), maxSeq, storable(t, "CopyAddedToCirculation", "copy-1", "book-1", "", baseTime))

		// assert
		assert.NoError(t, err)
	})

	t.Run("multiple_events_are_appended_atomically", func(t *testing.T) {
		es := newStore(t)
		ctx := context.Background()
		filter := eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.P("BookID", "book-1")).Finalize()

		// act
		err := es.Append(
			ctx,
			filter,
			0,
			storable(t, "CopyAddedToCirculation", "copy-1", "book-1", "", baseTime),
			storable(t, "CopyAddedToCirculation", "copy-2", "book-1", "", baseTime),
			storable(t, "CopyAddedToCirculation", "copy-3", "book-1", "", baseTime),
		)
		require.NoError(t, err)

		conflictErr := es.Append(
			ctx,
			filter,
			0,
			storable(t, "CopyAddedToCirculation", "copy-4", "book-1", "", baseTime),
			storable(t, "CopyAddedToCirculation", "copy-5", "book-1", "", baseTime),
		)

		// assert
		assert.ErrorIs(t, conflictErr, eventstore.ErrConcurrencyConflict)
		events, _, queryErr := es.Query(ctx, filter)
		require.NoError(t, queryErr)
		assert.Len(t, events, 3)
	})

	t.Run("concurrent_appends_with_the_same_expectation_let_exactly_one_win", func(t *testing.T) {
		es := newStore(t)
		ctx := context.Background()
		filter := copyFilter("copy-1")
		const contenders = 8

		// arrange
		appendOne(t, es, filter, 0, storable(t, "CopyAddedToCirculation", "copy-1", "book-1", "", baseTime))
		_, maxSeq, err := es.Query(ctx, filter)
		require.NoError(t, err)

		contenderEvents := make([]eventstore.StorableEvent, contenders)
		for i := range contenderEvents {
			contenderEvents[i] = storable(t, "CopyIssuedToBorrower", "copy-1", "book-1", fmt.Sprintf("borrower-%d", i), baseTime)
		}

		// act
		var wg sync.WaitGroup
		results := make(chan error, contenders)

		for _, event := range contenderEvents {
			wg.Add(1)

			go func(event eventstore.StorableEvent) {
				defer wg.Done()
				results <- es.Append(ctx, filter, maxSeq, event)
			}(event)
		}

		wg.Wait()
		close(results)

		// assert
		successes, conflicts := 0, 0
		for result := range results {
			if result == nil {
				successes++
				continue
			}

			assert.ErrorIs(t, result, eventstore.ErrConcurrencyConflict)
			conflicts++
		}

		assert.Equal(t, 1, successes)
		assert.Equal(t, contenders-1, conflicts)
	})

	t.Run("canceled_context_fails_fast", func(t *testing.T) {
		es := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := es.Query(ctx, copyFilter("copy-1"))

		assert.Error(t, err)
	})
}

func copyFilter(copyID string) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P("CopyID", copyID)).
		Finalize()
}

func storable(t *testing.T, eventType, copyID, bookID, borrowerID string, occurredAt time.Time) eventstore.StorableEvent {
	t.Helper()

	payload := fmt.Sprintf(`{"CopyID": %q, "BookID": %q`, copyID, bookID)
	if borrowerID != "" {
		payload += fmt.Sprintf(`, "BorrowerID": %q`, borrowerID)
	}
	payload += "}"

	event, err := eventstore.BuildStorableEvent(eventType, occurredAt, []byte(payload), []byte(`{"MessageID": "test"}`))
	require.NoError(t, err)

	return event
}

func appendOne(
	t *testing.T,
	es EventStore,
	filter eventstore.Filter,
	expected eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
) {
	t.Helper()

	require.NoError(t, es.Append(context.Background(), filter, expected, event))
}

func seed(t *testing.T, es EventStore, events ...eventstore.StorableEvent) {
	t.Helper()

	for _, event := range events {
		filter := eventstore.BuildEventFilter().Matching().AnyEventTypeOf(event.EventType).Finalize()
		_, maxSeq, err := es.Query(context.Background(), filter)
		require.NoError(t, err)
		appendOne(t, es, filter, maxSeq, event)
	}
}
