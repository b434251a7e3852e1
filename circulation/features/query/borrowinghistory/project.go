package borrowinghistory

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// Project folds the issue records of one borrower.
//
// Query Logic:
//
//	GIVEN: issue and return events of a borrower
//	WHEN: BorrowingHistory query is executed
//	THEN: every issue record is returned with open, returned and late counts
//	THEN: TotalFines sums the fines of returned issues
func Project(history core.DomainEvents, query Query, maxSequenceNumber uint) BorrowingHistory {
	ledger := core.ProjectCirculationLedger(history)
	result := BorrowingHistory{
		BorrowerID:     query.BorrowerID,
		Issues:         make([]core.IssueRecord, 0),
		SequenceNumber: maxSequenceNumber,
	}

	for _, issue := range ledger.All() {
		if issue.BorrowerID != query.BorrowerID {
			continue
		}

		result.Issues = append(result.Issues, issue)

		if issue.IsOpen() {
			result.OpenCount++
			continue
		}

		result.ReturnedCount++
		if issue.OverdueDays > 0 {
			result.LateReturns++
		}
		if issue.FineAmount != nil {
			result.TotalFines += *issue.FineAmount
		}
	}

	return result
}

// BuildEventFilter selects issue and return events of the borrower.
func BuildEventFilter(borrowerID core.BorrowerIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.CopyIssuedToBorrowerEventType, core.CopyReturnedByBorrowerEventType).
		AndAnyPredicateOf(eventstore.P(core.BorrowerIDKey, borrowerID)).
		Finalize()
}
