package markcopy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/markcopy"
	. "github.com/Shibashis-Mandal/Library-Management-System/testutil/circulationtest" //nolint:revive
)

func Test_CommandHandler_Handle_MarksDamagedOnce(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := NewMemoryStore(t)
	Seed(t, es, GivenCopyAdded("copy-1", "book-1", OnDay(0)))
	handler := markcopy.NewCommandHandler(es)
	command := markcopy.BuildCommand("copy-1", markcopy.MarkDamaged, "coffee stain", OnDay(1))

	// act
	first, err := handler.Handle(ctx, command)
	require.NoError(t, err)
	second, err := handler.Handle(ctx, command)
	require.NoError(t, err)

	// assert
	assert.False(t, first.Idempotent)
	assert.True(t, second.Idempotent)
	assert.Equal(t, 1, Count(t, es, core.CopyMarkedDamagedEventType))
}

func Test_CommandHandler_Handle_RejectsCopyOnLoan(t *testing.T) {
	// arrange
	es := NewMemoryStore(t)
	Seed(t, es,
		GivenCopyAdded("copy-1", "book-1", OnDay(0)),
		GivenIssued("issue-1", "copy-1", "book-1", "borrower-1", OnDay(1)),
	)
	before := es.Len()

	// act
	_, err := markcopy.NewCommandHandler(es).Handle(
		context.Background(),
		markcopy.BuildCommand("copy-1", markcopy.MarkLost, "", OnDay(2)),
	)

	// assert
	assert.ErrorIs(t, err, core.ErrCopyOnLoan)
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.Equal(t, before, es.Len())
}
