package issuebook

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// Decide implements the business logic to issue a copy to a borrower.
// It is a pure function: the same history and command always give the same decision.
//
// Business Rules:
//
//	GIVEN: a copy in the inventory and a borrower
//	WHEN: IssueBook command is received
//	THEN: CopyIssuedToBorrower event is generated, due date = issue date + loan period
//	ERROR: BorrowingLimitExceeded if the borrower already holds borrowingLimit open issues
//	ERROR: CopyNotFound if the copy was never added to circulation
//	ERROR: CopyNotAvailable if the copy is Issued, Damaged or Lost
//	ERROR: DuplicateOpenIssue if the ledger already has an open issue for the copy
//	IDEMPOTENCY: an issue with the same IssueID, copy and borrower was already recorded
//
// A borrowingLimit of zero or less disables the limit.
func Decide(history core.DomainEvents, command Command, borrowingLimit int) core.DecisionResult {
	inventory := core.ProjectCopyInventory(history)
	ledger := core.ProjectCirculationLedger(history)

	if existing, ok := ledger.Issue(command.IssueID); ok {
		if existing.CopyID == command.CopyID && existing.BorrowerID == command.BorrowerID {
			return core.IdempotentDecision()
		}

		return core.ErrorDecision(core.ErrDuplicateOpenIssue)
	}

	if borrowingLimit > 0 && len(ledger.ListOpenIssues(command.BorrowerID)) >= borrowingLimit {
		return core.ErrorDecision(core.ErrBorrowingLimitExceeded)
	}

	if err := inventory.TryReserve(command.CopyID); err != nil {
		return core.ErrorDecision(err)
	}

	copyRecord, _ := inventory.Copy(command.CopyID)
	dueDate := core.DueDateFor(command.IssueDate, command.LoanPeriodDays)

	issue, err := ledger.OpenIssue(
		command.IssueID,
		command.CopyID,
		copyRecord.BookID,
		command.BorrowerID,
		command.IssueDate,
		dueDate,
	)
	if err != nil {
		_ = inventory.Release(command.CopyID)
		return core.ErrorDecision(err)
	}

	return core.SuccessDecision(
		core.BuildCopyIssuedToBorrower(
			issue.IssueID,
			issue.CopyID,
			issue.BookID,
			issue.BorrowerID,
			issue.IssueDate,
			issue.DueDate,
		),
	)
}

// BuildEventFilter selects every event of the copy or of the borrower.
func BuildEventFilter(copyID core.CopyIDString, borrowerID core.BorrowerIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeIn(core.AllEventTypes()).
		AndAnyPredicateOf(
			eventstore.P(core.CopyIDKey, copyID),
			eventstore.P(core.BorrowerIDKey, borrowerID),
		).
		Finalize()
}
