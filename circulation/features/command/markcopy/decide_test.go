package markcopy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/markcopy"
	. "github.com/Shibashis-Mandal/Library-Management-System/testutil/circulationtest" //nolint:revive
)

func Test_Decide_Success(t *testing.T) {
	tests := []struct {
		name         string
		history      core.DomainEvents
		mark         markcopy.Mark
		expectedType string
	}{
		{
			name:         "available to damaged",
			history:      core.DomainEvents{GivenCopyAdded("copy-1", "book-1", OnDay(0))},
			mark:         markcopy.MarkDamaged,
			expectedType: core.CopyMarkedDamagedEventType,
		},
		{
			name:         "available to lost",
			history:      core.DomainEvents{GivenCopyAdded("copy-1", "book-1", OnDay(0))},
			mark:         markcopy.MarkLost,
			expectedType: core.CopyMarkedLostEventType,
		},
		{
			name: "damaged to lost",
			history: core.DomainEvents{
				GivenCopyAdded("copy-1", "book-1", OnDay(0)),
				core.BuildCopyMarkedDamaged("copy-1", "book-1", "torn", OnDay(1)),
			},
			mark:         markcopy.MarkLost,
			expectedType: core.CopyMarkedLostEventType,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := markcopy.Decide(tc.history, markcopy.BuildCommand("copy-1", tc.mark, "reason", OnDay(2)))

			require.NoError(t, result.HasError())
			require.True(t, result.HasEventToAppend())
			assert.Equal(t, tc.expectedType, result.Event.IsEventType())
			assert.Equal(t, OnDay(2), result.Event.HasOccurredAt())
		})
	}
}

func Test_Decide_Idempotent_WhenAlreadyDamaged(t *testing.T) {
	history := core.DomainEvents{
		GivenCopyAdded("copy-1", "book-1", OnDay(0)),
		core.BuildCopyMarkedDamaged("copy-1", "book-1", "torn", OnDay(1)),
	}

	result := markcopy.Decide(history, markcopy.BuildCommand("copy-1", markcopy.MarkDamaged, "torn again", OnDay(2)))

	assert.True(t, result.IsIdempotent())
	assert.NoError(t, result.HasError())
}

func Test_Decide_Error(t *testing.T) {
	tests := []struct {
		name        string
		history     core.DomainEvents
		mark        markcopy.Mark
		expectedErr error
	}{
		{
			name:        "unknown copy",
			history:     core.DomainEvents{},
			mark:        markcopy.MarkDamaged,
			expectedErr: core.ErrCopyNotFound,
		},
		{
			name: "on loan",
			history: core.DomainEvents{
				GivenCopyAdded("copy-1", "book-1", OnDay(0)),
				GivenIssued("issue-1", "copy-1", "book-1", "borrower-1", OnDay(1)),
			},
			mark:        markcopy.MarkLost,
			expectedErr: core.ErrCopyOnLoan,
		},
		{
			name: "already lost",
			history: core.DomainEvents{
				GivenCopyAdded("copy-1", "book-1", OnDay(0)),
				core.BuildCopyMarkedLost("copy-1", "book-1", "gone", OnDay(1)),
			},
			mark:        markcopy.MarkLost,
			expectedErr: core.ErrCopyAlreadyLost,
		},
		{
			name: "lost cannot become damaged",
			history: core.DomainEvents{
				GivenCopyAdded("copy-1", "book-1", OnDay(0)),
				core.BuildCopyMarkedLost("copy-1", "book-1", "gone", OnDay(1)),
			},
			mark:        markcopy.MarkDamaged,
			expectedErr: core.ErrCopyAlreadyLost,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := markcopy.Decide(tc.history, markcopy.BuildCommand("copy-1", tc.mark, "", OnDay(2)))

			assert.ErrorIs(t, result.HasError(), tc.expectedErr)
		})
	}
}

func Test_ParseMark(t *testing.T) {
	mark, err := markcopy.ParseMark("lost")
	require.NoError(t, err)
	assert.Equal(t, markcopy.MarkLost, mark)

	_, err = markcopy.ParseMark("stolen")
	assert.ErrorIs(t, err, markcopy.ErrUnknownMark)
}

func Test_BuildEventFilter_CoversEveryCopyEvent(t *testing.T) {
	filter := markcopy.BuildEventFilter("copy-1")

	require.Len(t, filter.Items(), 1)
	assert.ElementsMatch(t, core.AllEventTypes(), filter.Items()[0].EventTypes())
	assert.Equal(t, core.CopyIDKey, filter.Items()[0].Predicates()[0].Key())
	assert.Equal(t, "copy-1", filter.Items()[0].Predicates()[0].Val())
}
