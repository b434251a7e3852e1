package returnbook

import (
	"context"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// CommandHandler runs Query -> Unmarshal -> Decide -> Append for ReturnBook.
type CommandHandler struct {
	eventStore shell.EventStore
	finePolicy core.FinePolicy
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithFinePolicy sets the rate and cap used to compute fines.
func WithFinePolicy(policy core.FinePolicy) Option {
	return func(h *CommandHandler) {
		h.finePolicy = policy
	}
}

// NewCommandHandler creates a new CommandHandler. The default policy is 5 per day capped at 500.
func NewCommandHandler(eventStore shell.EventStore, opts ...Option) CommandHandler {
	handler := CommandHandler{
		eventStore: eventStore,
		finePolicy: core.FinePolicy{RatePerDay: 5, MaxFine: 500},
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the ReturnBook command.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	ctx = eventstore.WithStrongConsistency(ctx)

	if command.CopyID == "" {
		copyID, err := h.resolveCopy(ctx, command.IssueID)
		if err != nil {
			return shell.NewErrorResult(), err
		}

		command.CopyID = copyID
	}

	filter := BuildEventFilter(command.CopyID)

	decision, maxSequenceNumber, err := h.decide(ctx, filter, command)
	if err != nil {
		return shell.NewErrorResult(), err
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

func (h CommandHandler) resolveCopy(ctx context.Context, issueID core.IssueIDString) (core.CopyIDString, error) {
	if issueID == "" {
		return "", core.ErrIssueNotFound
	}

	storableEvents, _, err := h.eventStore.Query(ctx, BuildIssueLookupFilter(issueID))
	if err != nil {
		return "", shell.ClassifyStoreError(err)
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return "", err
	}

	for _, event := range history {
		if issued, ok := event.(core.CopyIssuedToBorrower); ok && issued.IssueID == issueID {
			return issued.CopyID, nil
		}
	}

	return "", core.ErrIssueNotFound
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

	return Decide(history, command, h.finePolicy), maxSequenceNumber, nil
}
