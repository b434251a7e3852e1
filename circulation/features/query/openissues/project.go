package openissues

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// Project lists the open issue records.
//
// Query Logic:
//
//	GIVEN: issue and return events, of one borrower or of all
//	WHEN: OpenIssues query is executed
//	THEN: every issue record without a return date is returned, oldest first
//	EXCLUDES: returned issues
func Project(history core.DomainEvents, query Query, maxSequenceNumber uint) OpenIssues {
	ledger := core.ProjectCirculationLedger(history)

	var issues []core.IssueRecord
	if query.BorrowerID != "" {
		issues = ledger.ListOpenIssues(query.BorrowerID)
	} else {
		issues = ledger.OpenIssues()
	}

	return OpenIssues{
		BorrowerID:     query.BorrowerID,
		Issues:         issues,
		Count:          len(issues),
		SequenceNumber: maxSequenceNumber,
	}
}

// BuildEventFilter selects issue and return events, restricted to one borrower when borrowerID is set.
func BuildEventFilter(borrowerID core.BorrowerIDString) eventstore.Filter {
	if borrowerID == "" {
		return eventstore.BuildEventFilter().
			Matching().
			AnyEventTypeOf(core.CopyIssuedToBorrowerEventType, core.CopyReturnedByBorrowerEventType).
			Finalize()
	}

	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.CopyIssuedToBorrowerEventType, core.CopyReturnedByBorrowerEventType).
		AndAnyPredicateOf(eventstore.P(core.BorrowerIDKey, borrowerID)).
		Finalize()
}
