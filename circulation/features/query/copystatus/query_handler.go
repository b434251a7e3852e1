package copystatus

import (
	"context"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// QueryHandler runs Query -> Unmarshal -> Project for CopyStatus.
type QueryHandler struct {
	eventStore shell.QueriesEvents
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(eventStore shell.QueriesEvents) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle executes the CopyStatus query.
func (h QueryHandler) Handle(ctx context.Context, query Query) (CopyStatus, error) {
	ctx = eventstore.WithEventualConsistency(ctx)

	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, BuildEventFilter(query.CopyID))
	if err != nil {
		return CopyStatus{}, shell.ClassifyStoreError(err)
	}

	envelopes, err := shell.EventEnvelopesFrom(storableEvents)
	if err != nil {
		return CopyStatus{}, err
	}

	return Project(envelopes, query, maxSequenceNumber)
}
