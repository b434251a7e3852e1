package copystatus_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/issuebook"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/copystatus"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	. "github.com/Shibashis-Mandal/Library-Management-System/testutil/circulationtest" //nolint:revive
)

func Test_QueryHandler_Handle_ReturnsStatusWithOpenIssueAndTrail(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := NewMemoryStore(t)
	Seed(t, es, GivenCopyAdded("copy-1", "book-1", OnDay(-1)))

	correlationID := uuid.New()
	issueCtx := shell.WithActor(shell.WithCorrelationID(ctx, correlationID), "librarian")
	_, err := issuebook.NewCommandHandler(es).Handle(
		issueCtx,
		issuebook.BuildCommand(uuid.New(), "copy-1", "borrower-1", OnDay(0), LoanPeriodDays),
	)
	require.NoError(t, err)

	// act
	result, err := copystatus.NewQueryHandler(es).Handle(ctx, copystatus.BuildQuery("copy-1"))

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.StatusIssued, result.Status)
	assert.Equal(t, "Shelf-A", result.ShelfLocation)
	require.NotNil(t, result.OpenIssue)
	assert.Equal(t, "borrower-1", result.OpenIssue.BorrowerID)
	require.Len(t, result.History, 2)
	assert.Equal(t, core.CopyIssuedToBorrowerEventType, result.History[1].EventType)
	assert.Equal(t, correlationID.String(), result.History[1].CorrelationID)
	assert.Equal(t, "librarian", result.History[1].Actor)
	assert.Equal(t, uint(2), result.GetSequenceNumber())
}

func Test_QueryHandler_Handle_UnknownCopy(t *testing.T) {
	_, err := copystatus.NewQueryHandler(NewMemoryStore(t)).Handle(context.Background(), copystatus.BuildQuery("nope"))

	assert.ErrorIs(t, err, core.ErrCopyNotFound)
}
