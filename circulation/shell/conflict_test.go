package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

func Test_ResolveAppendConflict(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	technical := errors.New("connection reset")

	tests := []struct {
		name               string
		appendErr          error
		recheck            shell.Recheck
		expectedErr        error
		expectedIdempotent bool
		expectedConflict   bool
	}{
		{
			name:        "technical error is passed through",
			appendErr:   technical,
			expectedErr: technical,
		},
		{
			name:        "deadline becomes busy",
			appendErr:   context.DeadlineExceeded,
			expectedErr: core.ErrBusy,
		},
		{
			name:      "fresh domain error wins",
			appendErr: eventstore.ErrConcurrencyConflict,
			recheck: func(context.Context) (core.DecisionResult, error) {
				return core.ErrorDecision(core.ErrCopyNotAvailable), nil
			},
			expectedErr:      core.ErrCopyNotAvailable,
			expectedConflict: true,
		},
		{
			name:      "fresh idempotent decision is a success",
			appendErr: eventstore.ErrConcurrencyConflict,
			recheck: func(context.Context) (core.DecisionResult, error) {
				return core.IdempotentDecision(), nil
			},
			expectedIdempotent: true,
			expectedConflict:   true,
		},
		{
			name:      "fresh success means busy",
			appendErr: eventstore.ErrConcurrencyConflict,
			recheck: func(context.Context) (core.DecisionResult, error) {
				return core.SuccessDecision(core.BuildCopyMarkedLost("c1", "b1", "", at)), nil
			},
			expectedErr:      core.ErrBusy,
			expectedConflict: true,
		},
		{
			name:      "failing recheck means busy",
			appendErr: eventstore.ErrConcurrencyConflict,
			recheck: func(context.Context) (core.DecisionResult, error) {
				return core.DecisionResult{}, technical
			},
			expectedErr:      core.ErrBusy,
			expectedConflict: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result, err := shell.ResolveAppendConflict(context.Background(), tc.appendErr, tc.recheck)

			// assert
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expectedIdempotent, result.Idempotent)
			assert.Equal(t, tc.expectedConflict, result.ConflictDetected)
			assert.Nil(t, result.Event)
		})
	}
}

func Test_CommandStatusOf(t *testing.T) {
	assert.Equal(t, shell.StatusSuccess, shell.CommandStatusOf(shell.NewSuccessResult(nil), nil))
	assert.Equal(t, shell.StatusIdempotent, shell.CommandStatusOf(shell.NewIdempotentResult(), nil))
	assert.Equal(t, shell.StatusRejected, shell.CommandStatusOf(shell.NewErrorResult(), core.ErrNoActiveIssue))
	assert.Equal(t, shell.StatusBusy, shell.CommandStatusOf(shell.NewErrorResult(), errors.Join(core.ErrBusy, eventstore.ErrConcurrencyConflict)))
	assert.Equal(t, shell.StatusTimeout, shell.CommandStatusOf(shell.NewErrorResult(), shell.ClassifyStoreError(context.DeadlineExceeded)))
	assert.Equal(t, shell.StatusCanceled, shell.CommandStatusOf(shell.NewErrorResult(), context.Canceled))
	assert.Equal(t, shell.StatusError, shell.CommandStatusOf(shell.NewErrorResult(), errors.New("boom")))
}
