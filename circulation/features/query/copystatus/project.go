package copystatus

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// Project folds the envelopes of one copy into its status.
//
// Query Logic:
//
//	GIVEN: a copy with CopyID
//	WHEN: CopyStatus query is executed
//	THEN: the current status, the open issue and the full event trail are returned
//	ERROR: CopyNotFound if the copy was never added
func Project(envelopes shell.EventEnvelopes, query Query, maxSequenceNumber uint) (CopyStatus, error) {
	inventory := core.NewCopyInventory()
	ledger := core.NewCirculationLedger()
	history := make([]HistoryEntry, 0, len(envelopes))

	for _, envelope := range envelopes {
		inventory.Apply(envelope.DomainEvent)
		ledger.Apply(envelope.DomainEvent)

		history = append(history, HistoryEntry{
			EventType:     envelope.DomainEvent.IsEventType(),
			OccurredAt:    envelope.DomainEvent.HasOccurredAt(),
			CorrelationID: envelope.EventMetadata.CorrelationID,
			Actor:         envelope.EventMetadata.Actor,
		})
	}

	rec, ok := inventory.Copy(query.CopyID)
	if !ok {
		return CopyStatus{}, core.ErrCopyNotFound
	}

	result := CopyStatus{
		CopyID:         rec.CopyID,
		BookID:         rec.BookID,
		ShelfLocation:  rec.ShelfLocation,
		Status:         rec.Status,
		History:        history,
		SequenceNumber: maxSequenceNumber,
	}

	if issue, open := ledger.FindOpenIssueByCopy(query.CopyID); open {
		result.OpenIssue = &issue
	}

	return result, nil
}

// BuildEventFilter selects every event of the copy.
func BuildEventFilter(copyID core.CopyIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeIn(core.AllEventTypes()).
		AndAnyPredicateOf(eventstore.P(core.CopyIDKey, copyID)).
		Finalize()
}
