package issuebook

import (
	"context"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

const defaultBorrowingLimit = 3

// CommandHandler runs Query -> Unmarshal -> Decide -> Append for IssueBook.
// It never retries, a lost append is re-decided once to pick the right error.
type CommandHandler struct {
	eventStore     shell.EventStore
	borrowingLimit int
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithBorrowingLimit sets the maximum number of open issues per borrower.
func WithBorrowingLimit(limit int) Option {
	return func(h *CommandHandler) {
		h.borrowingLimit = limit
	}
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(eventStore shell.EventStore, opts ...Option) CommandHandler {
	handler := CommandHandler{
		eventStore:     eventStore,
		borrowingLimit: defaultBorrowingLimit,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the IssueBook command.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	ctx = eventstore.WithStrongConsistency(ctx)
	filter := BuildEventFilter(command.CopyID, command.BorrowerID)

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

	return Decide(history, command, h.borrowingLimit), maxSequenceNumber, nil
}
