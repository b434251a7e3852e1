package markcopy

import (
	"context"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// CommandHandler runs Query -> Unmarshal -> Decide -> Append for MarkCopy.
type CommandHandler struct {
	eventStore shell.EventStore
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(eventStore shell.EventStore) CommandHandler {
	return CommandHandler{eventStore: eventStore}
}

// Handle executes the MarkCopy command.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	ctx = eventstore.WithStrongConsistency(ctx)
	filter := BuildEventFilter(command.CopyID)

	decision, maxSequenceNumber, err := h.decide(ctx, filter, command)
	if err != nil {
		return shell.NewErrorResult(), err
	}

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
			fresh, _, recheckErr := h.decide(ctx, filter, command)
			return fresh, recheckErr
		})
	}

	return shell.NewSuccessResult(decision.Event), nil
}

func (h CommandHandler) decide(
	ctx context.Context,
	filter eventstore.Filter,
	command Command,
) (core.DecisionResult, eventstore.MaxSequenceNumberUint, error) {

	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, filter)
	if err != nil {
		return core.DecisionResult{}, 0, shell.ClassifyStoreError(err)
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return core.DecisionResult{}, 0, err
	}

	return Decide(history, command), maxSequenceNumber, nil
}
