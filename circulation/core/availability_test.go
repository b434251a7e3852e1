package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

func Test_AvailabilityIndex_CountsAddUpToTotal(t *testing.T) {
	// arrange
	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	history := core.DomainEvents{
		core.BuildCopyAddedToCirculation("b1-c1", "book-1", "A-1", at),
		core.BuildCopyAddedToCirculation("b1-c2", "book-1", "A-1", at),
		core.BuildCopyAddedToCirculation("b1-c3", "book-1", "A-1", at),
		core.BuildCopyAddedToCirculation("b1-c4", "book-1", "A-1", at),
		core.BuildCopyAddedToCirculation("b2-c1", "book-2", "B-1", at),
		core.BuildCopyIssuedToBorrower("issue-1", "b1-c1", "book-1", "borrower-1", at, at.AddDate(0, 0, 14)),
		core.BuildCopyMarkedDamaged("b1-c2", "book-1", "torn cover", at),
		core.BuildCopyMarkedLost("b1-c3", "book-1", "", at),
	}

	// act
	index := core.BuildAvailabilityIndex(core.ProjectCopyInventory(history))

	// assert
	book1 := index.Get("book-1")
	assert.Equal(t, core.Availability{BookID: "book-1", Total: 4, Available: 1, Issued: 1, Damaged: 1, Lost: 1}, book1)
	assert.True(t, book1.Consistent())

	books := index.Books()
	assert.Len(t, books, 2)
	assert.Equal(t, "book-2", books[1].BookID)
	assert.Equal(t, core.Availability{BookID: "book-9"}, index.Get("book-9"))
}

func Test_AvailabilityOf_MatchesIndex(t *testing.T) {
	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	inv := core.ProjectCopyInventory(core.DomainEvents{
		core.BuildCopyAddedToCirculation("c1", "book-1", "A-1", at),
		core.BuildCopyAddedToCirculation("c2", "book-1", "A-1", at),
		core.BuildCopyIssuedToBorrower("issue-1", "c2", "book-1", "borrower-1", at, at.AddDate(0, 0, 14)),
	})

	assert.Equal(t, core.BuildAvailabilityIndex(inv).Get("book-1"), core.AvailabilityOf(inv, "book-1"))
}
