package openissues

import (
	"context"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// QueryHandler runs Query -> Unmarshal -> Project for OpenIssues.
type QueryHandler struct {
	eventStore shell.QueriesEvents
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(eventStore shell.QueriesEvents) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle executes the OpenIssues query.
func (h QueryHandler) Handle(ctx context.Context, query Query) (OpenIssues, error) {
	ctx = eventstore.WithEventualConsistency(ctx)

	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, BuildEventFilter(query.BorrowerID))
	if err != nil {
		return OpenIssues{}, shell.ClassifyStoreError(err)
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return OpenIssues{}, err
	}

	return Project(history, query, maxSequenceNumber), nil
}
