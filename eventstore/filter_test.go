package eventstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/Shibashis-Mandal/Library-Management-System/eventstore" //nolint:revive
)

var (
	jan1  = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jan31 = time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)
)

func Test_BuildEventFilter_MatchingAnyEvent_IsUnbounded(t *testing.T) {
	filter := BuildEventFilter().MatchingAnyEvent()

	assert.Empty(t, filter.Items())
	assert.True(t, filter.OccurredFrom().IsZero())
	assert.True(t, filter.OccurredUntil().IsZero())
}

func Test_BuildEventFilter_IssueBoundary(t *testing.T) {
	// act
	filter := BuildEventFilter().
		Matching().
		AnyEventTypeOf("CopyReturnedByBorrower", "CopyIssuedToBorrower", "CopyAddedToCirculation").
		AndAnyPredicateOf(P("CopyID", "copy-1")).
		OrMatching().
		AnyEventTypeOf("CopyReturnedByBorrower", "CopyIssuedToBorrower").
		AndAnyPredicateOf(P("BorrowerID", "student-1")).
		Finalize()

	// assert
	require.Len(t, filter.Items(), 2)

	copyItem, borrowerItem := filter.Items()[0], filter.Items()[1]
	assert.Equal(t, []string{"CopyAddedToCirculation", "CopyIssuedToBorrower", "CopyReturnedByBorrower"}, copyItem.EventTypes())
	assert.Equal(t, []FilterPredicate{P("CopyID", "copy-1")}, copyItem.Predicates())
	assert.False(t, copyItem.AllPredicatesMustMatch())
	assert.Equal(t, []string{"CopyIssuedToBorrower", "CopyReturnedByBorrower"}, borrowerItem.EventTypes())
	assert.Equal(t, []FilterPredicate{P("BorrowerID", "student-1")}, borrowerItem.Predicates())
}

func Test_BuildEventFilter_PredicatesFirst(t *testing.T) {
	filter := BuildEventFilter().
		Matching().
		AllPredicatesOf(P("CopyID", "copy-1"), P("BookID", "book-1")).
		AndAnyEventTypeOf("CopyAddedToCirculation").
		Finalize()

	require.Len(t, filter.Items(), 1)
	item := filter.Items()[0]
	assert.True(t, item.AllPredicatesMustMatch())
	assert.Equal(t, []FilterPredicate{P("BookID", "book-1"), P("CopyID", "copy-1")}, item.Predicates())
	assert.Equal(t, []string{"CopyAddedToCirculation"}, item.EventTypes())
}

func Test_BuildEventFilter_OccurrenceWindow(t *testing.T) {
	tests := []struct {
		name          string
		filter        Filter
		expectedItems int
		expectedFrom  time.Time
		expectedUntil time.Time
	}{
		{
			name:          "window without items",
			filter:        BuildEventFilter().OccurredFrom(jan1).AndOccurredUntil(jan31).Finalize(),
			expectedFrom:  jan1,
			expectedUntil: jan31,
		},
		{
			name:          "from only",
			filter:        BuildEventFilter().Matching().AnyEventTypeOf("CopyReturnedByBorrower").OccurredFrom(jan1).Finalize(),
			expectedItems: 1,
			expectedFrom:  jan1,
		},
		{
			name:          "until only",
			filter:        BuildEventFilter().Matching().AnyPredicateOf(P("BorrowerID", "student-1")).OccurredUntil(jan31).Finalize(),
			expectedItems: 1,
			expectedUntil: jan31,
		},
		{
			name: "both after an item",
			filter: BuildEventFilter().
				Matching().AnyEventTypeOf("CopyIssuedToBorrower").
				OccurredFrom(jan1).AndOccurredUntil(jan31).
				Finalize(),
			expectedItems: 1,
			expectedFrom:  jan1,
			expectedUntil: jan31,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Len(t, tc.filter.Items(), tc.expectedItems)
			assert.Equal(t, tc.expectedFrom, tc.filter.OccurredFrom())
			assert.Equal(t, tc.expectedUntil, tc.filter.OccurredUntil())
		})
	}
}

func Test_BuildEventFilter_SanitizesInput(t *testing.T) {
	t.Run("event types", func(t *testing.T) {
		filter := BuildEventFilter().
			Matching().
			AnyEventTypeOf("", "CopyMarkedLost", "CopyMarkedDamaged", "CopyMarkedLost").
			Finalize()

		assert.Equal(t, []string{"CopyMarkedDamaged", "CopyMarkedLost"}, filter.Items()[0].EventTypes())
	})

	t.Run("only empty event types", func(t *testing.T) {
		filter := BuildEventFilter().Matching().AnyEventTypeOf("", "").Finalize()

		require.Len(t, filter.Items(), 1)
		assert.Empty(t, filter.Items()[0].EventTypes())
	})

	t.Run("predicates", func(t *testing.T) {
		filter := BuildEventFilter().
			Matching().
			AnyPredicateOf(
				P("CopyID", "copy-2"),
				P("", "copy-3"),
				P("BookID", ""),
				P("CopyID", "copy-1"),
				P("CopyID", "copy-2"),
			).
			Finalize()

		assert.Equal(t, []FilterPredicate{P("CopyID", "copy-1"), P("CopyID", "copy-2")}, filter.Items()[0].Predicates())
	})
}

func Test_BuildEventFilter_EqualBoundariesGiveEqualFilters(t *testing.T) {
	a := BuildEventFilter().Matching().AnyEventTypeOf("B", "A").AndAnyPredicateOf(P("k", "2"), P("k", "1")).Finalize()
	b := BuildEventFilter().Matching().AnyEventTypeOf("A", "B", "A").AndAnyPredicateOf(P("k", "1"), P("k", "2")).Finalize()

	assert.Equal(t, a, b)
}

func Test_BuildEventFilter_SharedPrefixCanBeFinalizedTwice(t *testing.T) {
	// arrange
	prefix := BuildEventFilter().Matching().AnyEventTypeOf("CopyIssuedToBorrower")

	// act
	forCopy := prefix.AndAnyPredicateOf(P("CopyID", "copy-1")).Finalize()
	forBorrower := prefix.AndAnyPredicateOf(P("BorrowerID", "student-1")).Finalize()

	// assert
	assert.Equal(t, []FilterPredicate{P("CopyID", "copy-1")}, forCopy.Items()[0].Predicates())
	assert.Equal(t, []FilterPredicate{P("BorrowerID", "student-1")}, forBorrower.Items()[0].Predicates())
}

func Test_BuildEventFilter_AnyEventTypeIn_TakesARuntimeList(t *testing.T) {
	// arrange
	eventTypes := []string{"CopyReturnedByBorrower", "", "CopyAddedToCirculation", "CopyReturnedByBorrower"}

	// act
	filter := BuildEventFilter().
		Matching().
		AnyEventTypeIn(eventTypes).
		AndAnyPredicateOf(P("CopyID", "copy-1")).
		Finalize()

	// assert
	require.Len(t, filter.Items(), 1)
	assert.Equal(t, []string{"CopyAddedToCirculation", "CopyReturnedByBorrower"}, filter.Items()[0].EventTypes())
	assert.Equal(t, []string{"CopyReturnedByBorrower", "", "CopyAddedToCirculation", "CopyReturnedByBorrower"}, eventTypes)
	assert.Equal(t,
		BuildEventFilter().Matching().AnyEventTypeOf("CopyAddedToCirculation", "CopyReturnedByBorrower").AndAnyPredicateOf(P("CopyID", "copy-1")).Finalize(),
		filter,
	)
}
