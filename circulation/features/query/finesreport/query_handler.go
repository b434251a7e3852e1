package finesreport

import (
	"context"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// QueryHandler runs Query -> Unmarshal -> Project for FinesReport.
type QueryHandler struct {
	eventStore shell.QueriesEvents
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(eventStore shell.QueriesEvents) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle executes the FinesReport query.
func (h QueryHandler) Handle(ctx context.Context, query Query) (FinesReport, error) {
	ctx = eventstore.WithEventualConsistency(ctx)

	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, BuildEventFilter(query.From, query.Until))
	if err != nil {
		return FinesReport{}, shell.ClassifyStoreError(err)
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return FinesReport{}, err
	}

	return Project(history, query, maxSequenceNumber), nil
}
