package returnbook

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// Decide implements the business logic to return a copy.
//
// Business Rules:
//
//	GIVEN: a copy with an open issue
//	WHEN: ReturnBook command is received
//	THEN: CopyReturnedByBorrower event is generated with overdue days and fine from the policy
//	THEN: the copy becomes Available, Damaged or Lost according to the return condition
//	ERROR: NoActiveIssue if the copy has no open issue (return by copy)
//	ERROR: IssueNotFound if the issue id is unknown (return by issue)
//	ERROR: AlreadyReturned if the issue is closed (return by issue)
//	ERROR: ReturnBeforeIssue if the return date lies before the issue date
//
// A return is never idempotent. The second return of one issue fails.
func Decide(history core.DomainEvents, command Command, policy core.FinePolicy) core.DecisionResult {
	inventory := core.ProjectCopyInventory(history)
	ledger := core.ProjectCirculationLedger(history)

	var issue core.IssueRecord

	if command.IssueID != "" {
		found, ok := ledger.Issue(command.IssueID)
		if !ok {
			return core.ErrorDecision(core.ErrIssueNotFound)
		}

		if !found.IsOpen() {
			return core.ErrorDecision(core.ErrAlreadyReturned)
		}

		issue = found
	} else {
		found, ok := ledger.FindOpenIssueByCopy(command.CopyID)
		if !ok {
			return core.ErrorDecision(core.ErrNoActiveIssue)
		}

		issue = found
	}

	returnDate := core.ToOccurredAt(command.ReturnDate)
	if core.CalendarDay(returnDate).Before(core.CalendarDay(issue.IssueDate)) {
		return core.ErrorDecision(core.ErrReturnBeforeIssue)
	}

	assessment := policy.ComputeFine(issue.DueDate, returnDate)

	if _, err := ledger.CloseIssue(issue.IssueID, returnDate, assessment, command.Condition); err != nil {
		return core.ErrorDecision(err)
	}

	var err error
	switch command.Condition {
	case core.ConditionDamaged:
		err = inventory.MarkDamaged(issue.CopyID)
	case core.ConditionLost:
		err = inventory.MarkLost(issue.CopyID)
	default:
		err = inventory.Release(issue.CopyID)
	}

	if err != nil {
		return core.ErrorDecision(err)
	}

	return core.SuccessDecision(core.BuildCopyReturnedByBorrower(issue, returnDate, assessment, command.Condition))
}

// BuildEventFilter selects every event of the copy.
func BuildEventFilter(copyID core.CopyIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeIn(core.AllEventTypes()).
		AndAnyPredicateOf(eventstore.P(core.CopyIDKey, copyID)).
		Finalize()
}

// BuildIssueLookupFilter selects the issue event of one issue id.
func BuildIssueLookupFilter(issueID core.IssueIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.CopyIssuedToBorrowerEventType).
		AndAnyPredicateOf(eventstore.P(core.IssueIDKey, issueID)).
		Finalize()
}
