// Package circulationtest holds fixtures shared by the circulation feature tests.
package circulationtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore/memoryengine"
)

// Day0 is the reference clock of the scenario tests.
var Day0 = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

// LoanPeriodDays is the default loan period.
const LoanPeriodDays = 14

// DefaultFinePolicy is 5 per day capped at 500.
var DefaultFinePolicy = core.FinePolicy{RatePerDay: 5, MaxFine: 500}

// OnDay returns Day0 plus n days.
func OnDay(n int) time.Time {
	return Day0.AddDate(0, 0, n)
}

// GivenUniqueID returns a fresh random id.
func GivenUniqueID(t *testing.T) string {
	t.Helper()

	return uuid.NewString()
}

// GivenCopyAdded builds a CopyAddedToCirculation event.
func GivenCopyAdded(copyID, bookID string, at time.Time) core.CopyAddedToCirculation {
	return core.BuildCopyAddedToCirculation(copyID, bookID, "Shelf-A", at)
}

// GivenIssued builds a CopyIssuedToBorrower event with the default loan period.
func GivenIssued(issueID, copyID, bookID, borrowerID string, at time.Time) core.CopyIssuedToBorrower {
	return core.BuildCopyIssuedToBorrower(issueID, copyID, bookID, borrowerID, at, core.DueDateFor(at, LoanPeriodDays))
}

// GivenReturned builds the CopyReturnedByBorrower event for an issue, with the default fine policy.
func GivenReturned(issued core.CopyIssuedToBorrower, at time.Time, condition core.ReturnCondition) core.CopyReturnedByBorrower {
	issue := core.IssueRecord{
		IssueID:    issued.IssueID,
		CopyID:     issued.CopyID,
		BookID:     issued.BookID,
		BorrowerID: issued.BorrowerID,
		IssueDate:  issued.OccurredAt,
		DueDate:    issued.DueDate,
	}

	return core.BuildCopyReturnedByBorrower(issue, at, DefaultFinePolicy.ComputeFine(issued.DueDate, at), condition)
}

// NewMemoryStore returns an empty in-memory event store.
func NewMemoryStore(t *testing.T) *memoryengine.EventStore {
	t.Helper()

	es, err := memoryengine.NewEventStore()
	require.NoError(t, err)

	return es
}

// Seed appends events unconditionally, one append per event.
func Seed(t *testing.T, es shell.EventStore, events ...core.DomainEvent) {
	t.Helper()

	ctx := context.Background()
	all := eventstore.BuildEventFilter().MatchingAnyEvent()

	for _, event := range events {
		storableEvent, err := shell.StorableEventWithEmptyMetadataFrom(event)
		require.NoError(t, err)

		_, maxSeq, err := es.Query(ctx, all)
		require.NoError(t, err)

		require.NoError(t, es.Append(ctx, all, maxSeq, storableEvent))
	}
}

// Count returns the number of stored events of one type.
func Count(t *testing.T, es shell.QueriesEvents, eventType string) int {
	t.Helper()

	filter := eventstore.BuildEventFilter().Matching().AnyEventTypeOf(eventType).Finalize()
	events, _, err := es.Query(context.Background(), filter)
	require.NoError(t, err)

	return len(events)
}
