package markcopy

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// Decide implements the business logic to mark a copy.
//
// Business Rules:
//
//	GIVEN: a copy that is Available or Damaged and not on loan
//	WHEN: MarkCopy command is received
//	THEN: CopyMarkedDamaged or CopyMarkedLost event is generated
//	IDEMPOTENCY: marking a Damaged copy Damaged again generates no event
//	ERROR: CopyNotFound if the copy was never added
//	ERROR: CopyOnLoan if the copy has an open issue
//	ERROR: CopyAlreadyLost if the copy is Lost
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	inventory := core.ProjectCopyInventory(history)
	ledger := core.ProjectCirculationLedger(history)

	rec, ok := inventory.Copy(command.CopyID)
	if !ok {
		return core.ErrorDecision(core.ErrCopyNotFound)
	}

	if _, open := ledger.FindOpenIssueByCopy(command.CopyID); open || rec.Status == core.StatusIssued {
		return core.ErrorDecision(core.ErrCopyOnLoan)
	}

	switch rec.Status {
	case core.StatusLost:
		return core.ErrorDecision(core.ErrCopyAlreadyLost)
	case core.StatusDamaged:
		if command.Mark == MarkDamaged {
			return core.IdempotentDecision()
		}
	}

	if command.Mark == MarkLost {
		if err := inventory.MarkLost(rec.CopyID); err != nil {
			return core.ErrorDecision(err)
		}

		return core.SuccessDecision(core.BuildCopyMarkedLost(rec.CopyID, rec.BookID, command.Reason, command.OccurredAt))
	}

	if err := inventory.MarkDamaged(rec.CopyID); err != nil {
		return core.ErrorDecision(err)
	}

	return core.SuccessDecision(core.BuildCopyMarkedDamaged(rec.CopyID, rec.BookID, command.Reason, command.OccurredAt))
}

// BuildEventFilter selects every event of the copy.
func BuildEventFilter(copyID core.CopyIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeIn(core.AllEventTypes()).
		AndAnyPredicateOf(eventstore.P(core.CopyIDKey, copyID)).
		Finalize()
}
