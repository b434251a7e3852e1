package overdue

import (
	"context"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// QueryHandler runs Query -> Unmarshal -> Project for Overdue.
type QueryHandler struct {
	eventStore shell.QueriesEvents
	finePolicy core.FinePolicy
}

// NewQueryHandler creates a new QueryHandler that projects fines with the given policy.
func NewQueryHandler(eventStore shell.QueriesEvents, finePolicy core.FinePolicy) QueryHandler {
	return QueryHandler{eventStore: eventStore, finePolicy: finePolicy}
}

// Handle executes the Overdue query.
func (h QueryHandler) Handle(ctx context.Context, query Query) (OverdueIssues, error) {
	ctx = eventstore.WithEventualConsistency(ctx)

	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, BuildEventFilter())
	if err != nil {
		return OverdueIssues{}, shell.ClassifyStoreError(err)
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return OverdueIssues{}, err
	}

	return Project(history, query, h.finePolicy, maxSequenceNumber), nil
}
