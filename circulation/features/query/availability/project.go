package availability

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// Project computes the availability counts.
//
// Query Logic:
//
//	GIVEN: copy events of one book, or of all books
//	WHEN: Availability query is executed
//	THEN: total, available, issued, damaged and lost copies are counted per book
//	INCLUDES: a zero entry for a queried book without copies
func Project(history core.DomainEvents, query Query, maxSequenceNumber uint) Availabilities {
	index := core.BuildAvailabilityIndex(core.ProjectCopyInventory(history))

	if query.BookID != "" {
		return Availabilities{
			Books:          []core.Availability{index.Get(query.BookID)},
			SequenceNumber: maxSequenceNumber,
		}
	}

	return Availabilities{
		Books:          index.Books(),
		SequenceNumber: maxSequenceNumber,
	}
}

// BuildEventFilter selects every copy event, restricted to one book when bookID is set.
func BuildEventFilter(bookID core.BookIDString) eventstore.Filter {
	if bookID == "" {
		return eventstore.BuildEventFilter().
			Matching().
			AnyEventTypeIn(core.AllEventTypes()).
			Finalize()
	}

	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeIn(core.AllEventTypes()).
		AndAnyPredicateOf(eventstore.P(core.BookIDKey, bookID)).
		Finalize()
}
