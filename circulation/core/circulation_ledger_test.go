package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

func Test_CirculationLedger_OpenAndClose(t *testing.T) {
	// arrange
	ledger := core.NewCirculationLedger()
	issueDate := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	dueDate := core.DueDateFor(issueDate, 14)

	// act
	rec, err := ledger.OpenIssue("issue-1", "copy-1", "book-1", "borrower-1", issueDate, dueDate)

	// assert
	require.NoError(t, err)
	assert.True(t, rec.IsOpen())
	assert.Nil(t, rec.FineAmount)
	assert.Equal(t, time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC), rec.DueDate)

	_, err = ledger.OpenIssue("issue-2", "copy-1", "book-1", "borrower-2", issueDate, dueDate)
	assert.ErrorIs(t, err, core.ErrDuplicateOpenIssue)

	open, ok := ledger.FindOpenIssueByCopy("copy-1")
	require.True(t, ok)
	assert.Equal(t, "issue-1", open.IssueID)

	closed, err := ledger.CloseIssue("issue-1", issueDate.AddDate(0, 0, 20), core.FineAssessment{OverdueDays: 6, Fine: 30}, core.ConditionGood)
	require.NoError(t, err)
	assert.False(t, closed.IsOpen())
	require.NotNil(t, closed.FineAmount)
	assert.Equal(t, core.Amount(30), *closed.FineAmount)

	_, err = ledger.CloseIssue("issue-1", issueDate.AddDate(0, 0, 21), core.FineAssessment{}, core.ConditionGood)
	assert.ErrorIs(t, err, core.ErrAlreadyReturned)

	_, err = ledger.CloseIssue("issue-9", issueDate, core.FineAssessment{}, core.ConditionGood)
	assert.ErrorIs(t, err, core.ErrIssueNotFound)

	_, ok = ledger.FindOpenIssueByCopy("copy-1")
	assert.False(t, ok)
}

func Test_CirculationLedger_ListOpenIssues_IsSortedByIssueDate(t *testing.T) {
	// arrange
	at := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	history := core.DomainEvents{
		core.BuildCopyIssuedToBorrower("issue-c", "copy-3", "book-1", "borrower-1", at.Add(2*time.Hour), at.AddDate(0, 0, 14)),
		core.BuildCopyIssuedToBorrower("issue-a", "copy-1", "book-1", "borrower-1", at, at.AddDate(0, 0, 14)),
		core.BuildCopyIssuedToBorrower("issue-b", "copy-2", "book-2", "borrower-2", at.Add(time.Hour), at.AddDate(0, 0, 14)),
	}

	// act
	ledger := core.ProjectCirculationLedger(history)

	// assert
	open := ledger.ListOpenIssues("borrower-1")
	require.Len(t, open, 2)
	assert.Equal(t, "issue-a", open[0].IssueID)
	assert.Equal(t, "issue-c", open[1].IssueID)
	assert.Len(t, ledger.OpenIssues(), 3)
	assert.Empty(t, ledger.ListOpenIssues("borrower-3"))
}

func Test_ProjectCirculationLedger_IgnoresReplayedEvents(t *testing.T) {
	at := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	issued := core.BuildCopyIssuedToBorrower("issue-1", "copy-1", "book-1", "borrower-1", at, at.AddDate(0, 0, 14))
	issue := core.IssueRecord{IssueID: "issue-1", CopyID: "copy-1", BookID: "book-1", BorrowerID: "borrower-1", DueDate: issued.DueDate}
	returned := core.BuildCopyReturnedByBorrower(issue, at.AddDate(0, 0, 2), core.FineAssessment{}, core.ConditionGood)

	ledger := core.ProjectCirculationLedger(core.DomainEvents{issued, issued, returned, returned})

	all := ledger.All()
	require.Len(t, all, 1)
	assert.False(t, all[0].IsOpen())
	assert.Equal(t, at.AddDate(0, 0, 2), *all[0].ReturnDate)
}
