package popularbooks_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/popularbooks"
	. "github.com/Shibashis-Mandal/Library-Management-System/testutil/circulationtest" //nolint:revive
)

func Test_Project_RanksByIssueCount(t *testing.T) {
	history := core.DomainEvents{
		GivenIssued("issue-1", "copy-1", "book-b", "borrower-1", OnDay(0)),
		GivenIssued("issue-2", "copy-2", "book-b", "borrower-1", OnDay(1)),
		GivenIssued("issue-3", "copy-3", "book-b", "borrower-2", OnDay(2)),
		GivenIssued("issue-4", "copy-4", "book-a", "borrower-1", OnDay(2)),
		GivenIssued("issue-5", "copy-5", "book-c", "borrower-3", OnDay(3)),
	}

	top := popularbooks.Project(history, popularbooks.BuildQuery(2, time.Time{}, time.Time{}), 5)

	assert.Equal(t, []popularbooks.BookIssues{
		{BookID: "book-b", IssueCount: 3, DistinctBorrowers: 2},
		{BookID: "book-a", IssueCount: 1, DistinctBorrowers: 1},
	}, top.Books)

	all := popularbooks.Project(history, popularbooks.BuildQuery(0, time.Time{}, time.Time{}), 5)
	assert.Len(t, all.Books, 3)
}
