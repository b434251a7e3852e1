package addcopy

import (
	"context"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// CommandHandler runs Query -> Unmarshal -> Decide -> Append for AddCopy.
type CommandHandler struct {
	eventStore shell.EventStore
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(eventStore shell.EventStore) CommandHandler {
	return CommandHandler{eventStore: eventStore}
}

// Handle executes the AddCopy command.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	ctx = eventstore.WithStrongConsistency(ctx)
	filter := BuildEventFilter(command.CopyID)

	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, filter)
	if err != nil {
		return shell.NewErrorResult(), shell.ClassifyStoreError(err)
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return shell.NewErrorResult(), err
	}

	decision := Decide(history, command)

	if decision.IsIdempotent() {
		return shell.NewIdempotentResult(), nil
	}

	if decisionErr := decision.HasError(); decisionErr != nil {
		return shell.NewErrorResult(), decisionErr
	}

	storableEvent, err := shell.StorableEventFrom(decision.Event, shell.EventMetadataFromContext(ctx))
	if err != nil {
		return shell.NewErrorResult(), err
	}

	if err = h.eventStore.Append(ctx, filter, maxSequenceNumber, storableEvent); err != nil {
		return shell.ResolveAppendConflict(ctx, err, func(ctx context.Context) (core.DecisionResult, error) {
			freshEvents, _, queryErr := h.eventStore.Query(ctx, filter)
			if queryErr != nil {
				return core.DecisionResult{}, queryErr
			}

			freshHistory, mapErr := shell.DomainEventsFrom(freshEvents)
			if mapErr != nil {
				return core.DecisionResult{}, mapErr
			}

			return Decide(freshHistory, command), nil
		})
	}

	return shell.NewSuccessResult(decision.Event), nil
}
