package availability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/availability"
	. "github.com/Shibashis-Mandal/Library-Management-System/testutil/circulationtest" //nolint:revive
)

func Test_Project_CountsEveryStatus(t *testing.T) {
	// arrange
	issued := GivenIssued("issue-1", "copy-2", "book-1", "borrower-1", OnDay(1))
	history := core.DomainEvents{
		GivenCopyAdded("copy-1", "book-1", OnDay(0)),
		GivenCopyAdded("copy-2", "book-1", OnDay(0)),
		GivenCopyAdded("copy-3", "book-1", OnDay(0)),
		GivenCopyAdded("copy-4", "book-1", OnDay(0)),
		GivenCopyAdded("copy-5", "book-2", OnDay(0)),
		issued,
		core.BuildCopyMarkedDamaged("copy-3", "book-1", "torn", OnDay(2)),
		core.BuildCopyMarkedLost("copy-4", "book-1", "gone", OnDay(2)),
	}

	// act
	result := availability.Project(history, availability.BuildIndexQuery(), 8)

	// assert
	require.Len(t, result.Books, 2)
	book1 := result.For("book-1")
	assert.Equal(t, core.Availability{BookID: "book-1", Total: 4, Available: 1, Issued: 1, Damaged: 1, Lost: 1}, book1)
	assert.True(t, book1.Consistent())
	assert.Equal(t, 1, result.For("book-2").Available)
	assert.Equal(t, uint(8), result.GetSequenceNumber())

	// returning the copy frees it again
	history = append(history, GivenReturned(issued, OnDay(3), core.ConditionGood))
	book1 = availability.Project(history, availability.BuildQuery("book-1"), 9).For("book-1")
	assert.Equal(t, 2, book1.Available)
	assert.Equal(t, 0, book1.Issued)
}

func Test_Project_UnknownBookHasZeroCounts(t *testing.T) {
	result := availability.Project(core.DomainEvents{}, availability.BuildQuery("book-9"), 0)

	require.Len(t, result.Books, 1)
	assert.Equal(t, core.Availability{BookID: "book-9"}, result.Books[0])
}
