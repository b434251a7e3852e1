package issuebook_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/issuebook"
	. "github.com/Shibashis-Mandal/Library-Management-System/testutil/circulationtest" //nolint:revive
)

func Test_Decide_Success_WhenCopyIsAvailable(t *testing.T) {
	// arrange
	history := core.DomainEvents{GivenCopyAdded("copy-1", "book-1", OnDay(-1))}
	command := issuebook.BuildCommand(uuid.New(), "copy-1", "borrower-1", OnDay(0), LoanPeriodDays)

	// act
	result := issuebook.Decide(history, command, 3)

	// assert
	require.NoError(t, result.HasError())
	require.True(t, result.HasEventToAppend())
	event, ok := result.Event.(core.CopyIssuedToBorrower)
	require.True(t, ok)
	assert.Equal(t, command.IssueID, event.IssueID)
	assert.Equal(t, "book-1", event.BookID)
	assert.Equal(t, OnDay(0), event.OccurredAt)
	assert.Equal(t, OnDay(14), event.DueDate)
}

func Test_Decide_Error_WhenCopyIsNotAvailable(t *testing.T) {
	tests := []struct {
		name        string
		history     core.DomainEvents
		expectedErr error
	}{
		{
			name:        "unknown copy",
			history:     core.DomainEvents{},
			expectedErr: core.ErrCopyNotFound,
		},
		{
			name: "already issued",
			history: core.DomainEvents{
				GivenCopyAdded("copy-1", "book-1", OnDay(-2)),
				GivenIssued("issue-0", "copy-1", "book-1", "borrower-2", OnDay(-1)),
			},
			expectedErr: core.ErrCopyNotAvailable,
		},
		{
			name: "damaged",
			history: core.DomainEvents{
				GivenCopyAdded("copy-1", "book-1", OnDay(-2)),
				core.BuildCopyMarkedDamaged("copy-1", "book-1", "water", OnDay(-1)),
			},
			expectedErr: core.ErrCopyNotAvailable,
		},
		{
			name: "lost on return",
			history: func() core.DomainEvents {
				issued := GivenIssued("issue-0", "copy-1", "book-1", "borrower-2", OnDay(-5))
				return core.DomainEvents{
					GivenCopyAdded("copy-1", "book-1", OnDay(-6)),
					issued,
					GivenReturned(issued, OnDay(-1), core.ConditionLost),
				}
			}(),
			expectedErr: core.ErrCopyNotAvailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			command := issuebook.BuildCommand(uuid.New(), "copy-1", "borrower-1", OnDay(0), LoanPeriodDays)

			result := issuebook.Decide(tc.history, command, 3)

			assert.ErrorIs(t, result.HasError(), tc.expectedErr)
			assert.False(t, result.HasEventToAppend())
		})
	}
}

func Test_Decide_Success_WhenCopyWasReturned(t *testing.T) {
	issued := GivenIssued("issue-0", "copy-1", "book-1", "borrower-2", OnDay(-5))
	history := core.DomainEvents{
		GivenCopyAdded("copy-1", "book-1", OnDay(-6)),
		issued,
		GivenReturned(issued, OnDay(-1), core.ConditionGood),
	}

	result := issuebook.Decide(history, issuebook.BuildCommand(uuid.New(), "copy-1", "borrower-1", OnDay(0), LoanPeriodDays), 3)

	assert.NoError(t, result.HasError())
	assert.True(t, result.HasEventToAppend())
}

func Test_Decide_Error_WhenBorrowingLimitReached(t *testing.T) {
	// arrange
	history := core.DomainEvents{GivenCopyAdded("copy-4", "book-4", OnDay(-1))}
	for i, copyID := range []string{"copy-1", "copy-2", "copy-3"} {
		history = append(history, GivenIssued(uuid.NewString(), copyID, "book-x", "borrower-1", OnDay(-3+i)))
	}

	command := issuebook.BuildCommand(uuid.New(), "copy-4", "borrower-1", OnDay(0), LoanPeriodDays)

	// act
	result := issuebook.Decide(history, command, 3)

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrBorrowingLimitExceeded)
	assert.ErrorIs(t, result.HasError(), core.ErrPolicyViolation)
	assert.Nil(t, result.Event)

	// a higher limit lets the same command through
	assert.NoError(t, issuebook.Decide(history, command, 4).HasError())
	assert.NoError(t, issuebook.Decide(history, command, 0).HasError())
}

func Test_Decide_Idempotent_WhenSameIssueWasRecorded(t *testing.T) {
	issueID := uuid.New()
	history := core.DomainEvents{
		GivenCopyAdded("copy-1", "book-1", OnDay(-1)),
		GivenIssued(issueID.String(), "copy-1", "book-1", "borrower-1", OnDay(0)),
	}

	result := issuebook.Decide(history, issuebook.BuildCommand(issueID, "copy-1", "borrower-1", OnDay(0), LoanPeriodDays), 3)

	assert.True(t, result.IsIdempotent())
	assert.NoError(t, result.HasError())
	assert.False(t, result.HasEventToAppend())
}

func Test_Decide_Error_WhenIssueIDIsReusedForAnotherCopy(t *testing.T) {
	issueID := uuid.New()
	history := core.DomainEvents{
		GivenCopyAdded("copy-1", "book-1", OnDay(-1)),
		GivenCopyAdded("copy-2", "book-1", OnDay(-1)),
		GivenIssued(issueID.String(), "copy-1", "book-1", "borrower-1", OnDay(0)),
	}

	result := issuebook.Decide(history, issuebook.BuildCommand(issueID, "copy-2", "borrower-1", OnDay(0), LoanPeriodDays), 3)

	assert.ErrorIs(t, result.HasError(), core.ErrDuplicateOpenIssue)
}
