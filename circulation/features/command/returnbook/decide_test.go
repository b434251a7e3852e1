package returnbook_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/returnbook"
	. "github.com/Shibashis-Mandal/Library-Management-System/testutil/circulationtest" //nolint:revive
)

func givenIssuedCopy() core.DomainEvents {
	return core.DomainEvents{
		GivenCopyAdded("copy-1", "book-1", OnDay(-1)),
		GivenIssued("issue-1", "copy-1", "book-1", "borrower-1", OnDay(0)),
	}
}

func Test_Decide_Success_ComputesFine(t *testing.T) {
	tests := []struct {
		name        string
		returnDay   int
		overdueDays int
		fine        core.Amount
	}{
		{name: "on time", returnDay: 10, overdueDays: 0, fine: 0},
		{name: "on the due date", returnDay: 14, overdueDays: 0, fine: 0},
		{name: "three days late", returnDay: 17, overdueDays: 3, fine: 15},
		{name: "capped", returnDay: 214, overdueDays: 200, fine: 500},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result := returnbook.Decide(
				givenIssuedCopy(),
				returnbook.BuildCommand("copy-1", OnDay(tc.returnDay), core.ConditionGood),
				DefaultFinePolicy,
			)

			// assert
			require.NoError(t, result.HasError())
			event, ok := result.Event.(core.CopyReturnedByBorrower)
			require.True(t, ok)
			assert.Equal(t, "issue-1", event.IssueID)
			assert.Equal(t, "borrower-1", event.BorrowerID)
			assert.Equal(t, tc.overdueDays, event.OverdueDays)
			assert.Equal(t, tc.fine, event.FineAmount)
			assert.Equal(t, core.ConditionGood, event.Condition)
		})
	}
}

func Test_Decide_Success_DateOnlyReturnOnTheIssueDay(t *testing.T) {
	// arrange
	issuedAt := Day0.Add(time.Hour)
	history := core.DomainEvents{
		GivenCopyAdded("copy-1", "book-1", OnDay(-1)),
		GivenIssued("issue-1", "copy-1", "book-1", "borrower-1", issuedAt),
	}
	midnight := time.Date(issuedAt.Year(), issuedAt.Month(), issuedAt.Day(), 0, 0, 0, 0, time.UTC)

	// act
	result := returnbook.Decide(history, returnbook.BuildCommand("copy-1", midnight, core.ConditionGood), DefaultFinePolicy)

	// assert
	require.NoError(t, result.HasError())
	event, ok := result.Event.(core.CopyReturnedByBorrower)
	require.True(t, ok)
	assert.Zero(t, event.OverdueDays)
	assert.Zero(t, event.FineAmount)

	status, err := core.ProjectCopyInventory(append(history, event)).GetStatus("copy-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusAvailable, status)
}

func Test_Decide_Success_ByIssueID(t *testing.T) {
	// act
	result := returnbook.Decide(
		givenIssuedCopy(),
		returnbook.Command{CopyID: "copy-1", IssueID: "issue-1", ReturnDate: OnDay(3), Condition: core.ConditionDamaged},
		DefaultFinePolicy,
	)

	// assert
	require.NoError(t, result.HasError())
	event, ok := result.Event.(core.CopyReturnedByBorrower)
	require.True(t, ok)
	assert.Equal(t, core.ConditionDamaged, event.Condition)

	inventory := core.ProjectCopyInventory(append(givenIssuedCopy(), event))
	status, err := inventory.GetStatus("copy-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusDamaged, status)
}

func Test_Decide_Error(t *testing.T) {
	issued := GivenIssued("issue-1", "copy-1", "book-1", "borrower-1", OnDay(0))
	returned := GivenReturned(issued, OnDay(5), core.ConditionGood)

	tests := []struct {
		name        string
		history     core.DomainEvents
		command     returnbook.Command
		expectedErr error
	}{
		{
			name:        "copy without an open issue",
			history:     core.DomainEvents{GivenCopyAdded("copy-1", "book-1", OnDay(-1))},
			command:     returnbook.BuildCommand("copy-1", OnDay(1), core.ConditionGood),
			expectedErr: core.ErrNoActiveIssue,
		},
		{
			name:        "copy returned twice",
			history:     core.DomainEvents{GivenCopyAdded("copy-1", "book-1", OnDay(-1)), issued, returned},
			command:     returnbook.BuildCommand("copy-1", OnDay(6), core.ConditionGood),
			expectedErr: core.ErrNoActiveIssue,
		},
		{
			name:        "issue returned twice",
			history:     core.DomainEvents{GivenCopyAdded("copy-1", "book-1", OnDay(-1)), issued, returned},
			command:     returnbook.Command{CopyID: "copy-1", IssueID: "issue-1", ReturnDate: OnDay(6), Condition: core.ConditionGood},
			expectedErr: core.ErrAlreadyReturned,
		},
		{
			name:        "unknown issue",
			history:     givenIssuedCopy(),
			command:     returnbook.Command{CopyID: "copy-1", IssueID: "issue-9", ReturnDate: OnDay(6), Condition: core.ConditionGood},
			expectedErr: core.ErrIssueNotFound,
		},
		{
			name:        "return before issue",
			history:     givenIssuedCopy(),
			command:     returnbook.BuildCommand("copy-1", OnDay(-1), core.ConditionGood),
			expectedErr: core.ErrReturnBeforeIssue,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := returnbook.Decide(tc.history, tc.command, DefaultFinePolicy)

			assert.ErrorIs(t, result.HasError(), tc.expectedErr)
			assert.False(t, result.HasEventToAppend())
		})
	}
}
