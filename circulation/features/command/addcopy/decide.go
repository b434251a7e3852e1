package addcopy

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// Decide implements the business logic to add a copy.
//
// Business Rules:
//
//	GIVEN: a copy id that was never added
//	WHEN: AddCopy command is received
//	THEN: CopyAddedToCirculation event is generated, the copy is Available
//	IDEMPOTENCY: adding the same copy for the same book again generates no event
//	ERROR: CopyBelongsToAnotherBook if the copy was added for a different book
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	inventory := core.ProjectCopyInventory(history)

	added, err := inventory.AddCopy(command.CopyID, command.BookID, command.ShelfLocation)
	if err != nil {
		return core.ErrorDecision(err)
	}

	if !added {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(core.BuildCopyAddedToCirculation(
		command.CopyID,
		command.BookID,
		command.ShelfLocation,
		command.OccurredAt,
	))
}

// BuildEventFilter selects the registration event of the copy.
func BuildEventFilter(copyID core.CopyIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.CopyAddedToCirculationEventType).
		AndAnyPredicateOf(eventstore.P(core.CopyIDKey, copyID)).
		Finalize()
}
