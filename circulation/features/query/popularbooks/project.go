package popularbooks

import (
	"cmp"
	"slices"
	"time"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// Project ranks books by issue count, ties broken by book id.
func Project(history core.DomainEvents, query Query, maxSequenceNumber uint) PopularBooks {
	counts := make(map[core.BookIDString]*BookIssues)
	borrowers := make(map[core.BookIDString]map[core.BorrowerIDString]struct{})

	for _, event := range history {
		issued, ok := event.(core.CopyIssuedToBorrower)
		if !ok {
			continue
		}

		entry, ok := counts[issued.BookID]
		if !ok {
			entry = &BookIssues{BookID: issued.BookID}
			counts[issued.BookID] = entry
			borrowers[issued.BookID] = make(map[core.BorrowerIDString]struct{})
		}

		entry.IssueCount++
		borrowers[issued.BookID][issued.BorrowerID] = struct{}{}
	}

	books := make([]BookIssues, 0, len(counts))
	for bookID, entry := range counts {
		entry.DistinctBorrowers = len(borrowers[bookID])
		books = append(books, *entry)
	}

	slices.SortFunc(books, func(a, b BookIssues) int {
		if c := cmp.Compare(b.IssueCount, a.IssueCount); c != 0 {
			return c
		}

		return cmp.Compare(a.BookID, b.BookID)
	})

	if query.Limit > 0 && len(books) > query.Limit {
		books = books[:query.Limit]
	}

	return PopularBooks{Books: books, SequenceNumber: maxSequenceNumber}
}

// BuildEventFilter selects issue events between from and until.
func BuildEventFilter(from, until time.Time) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.CopyIssuedToBorrowerEventType).
		OccurredFrom(from).
		AndOccurredUntil(until).
		Finalize()
}
