package finesreport

import (
	"cmp"
	"slices"
	"time"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// Project sums the fines of the returns in the window.
//
// Query Logic:
//
//	GIVEN: return events inside the window
//	WHEN: FinesReport query is executed
//	THEN: returns, late returns and fines are summed overall and per borrower
//	INCLUDES: borrowers with on-time returns only, with zero fines
func Project(history core.DomainEvents, query Query, maxSequenceNumber uint) FinesReport {
	report := FinesReport{
		From:           query.From,
		Until:          query.Until,
		Borrowers:      make([]BorrowerFines, 0),
		SequenceNumber: maxSequenceNumber,
	}
	perBorrower := make(map[core.BorrowerIDString]*BorrowerFines)

	for _, event := range history {
		returned, ok := event.(core.CopyReturnedByBorrower)
		if !ok {
			continue
		}

		entry, ok := perBorrower[returned.BorrowerID]
		if !ok {
			entry = &BorrowerFines{BorrowerID: returned.BorrowerID}
			perBorrower[returned.BorrowerID] = entry
		}

		entry.Returns++
		entry.TotalFines += returned.FineAmount
		report.Returns++
		report.TotalFines += returned.FineAmount

		if returned.OverdueDays > 0 {
			entry.LateReturns++
			report.LateReturns++
		}
	}

	for _, entry := range perBorrower {
		report.Borrowers = append(report.Borrowers, *entry)
	}

	slices.SortFunc(report.Borrowers, func(a, b BorrowerFines) int {
		if c := cmp.Compare(b.TotalFines, a.TotalFines); c != 0 {
			return c
		}

		return cmp.Compare(a.BorrowerID, b.BorrowerID)
	})

	return report
}

// BuildEventFilter selects return events between from and until.
func BuildEventFilter(from, until time.Time) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.CopyReturnedByBorrowerEventType).
		OccurredFrom(from).
		AndOccurredUntil(until).
		Finalize()
}
