package overdue

import (
	"slices"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// Project lists the overdue open issues.
//
// Query Logic:
//
//	GIVEN: every issue and return event
//	WHEN: Overdue query is executed for a date
//	THEN: open issues with at least one overdue day on that date are returned
//	THEN: each carries the fine the policy would charge for a return on that date
//	EXCLUDES: returned issues, issues due on or after the date
func Project(history core.DomainEvents, query Query, policy core.FinePolicy, maxSequenceNumber uint) OverdueIssues {
	ledger := core.ProjectCirculationLedger(history)
	result := OverdueIssues{
		AsOf:           core.ToOccurredAt(query.AsOf),
		Issues:         make([]OverdueIssue, 0),
		SequenceNumber: maxSequenceNumber,
	}

	for _, issue := range ledger.OpenIssues() {
		assessment := policy.ComputeFine(issue.DueDate, query.AsOf)
		if assessment.OverdueDays == 0 {
			continue
		}

		result.Issues = append(result.Issues, OverdueIssue{
			IssueRecord:   issue,
			OverdueDays:   assessment.OverdueDays,
			ProjectedFine: assessment.Fine,
		})
		result.TotalProjectedFines += assessment.Fine
	}

	slices.SortStableFunc(result.Issues, func(a, b OverdueIssue) int {
		if a.OverdueDays != b.OverdueDays {
			return b.OverdueDays - a.OverdueDays
		}

		return core.CompareIssues(a.IssueRecord, b.IssueRecord)
	})

	result.Count = len(result.Issues)

	return result
}

// BuildEventFilter selects every issue and return event.
func BuildEventFilter() eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.CopyIssuedToBorrowerEventType, core.CopyReturnedByBorrowerEventType).
		Finalize()
}
