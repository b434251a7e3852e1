package shell

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/testutil/testdoubles"
)

// failing returns a RetryableFunc that answers with errs in order, then nil, and counts its calls.
func failing(calls *int, errs ...error) RetryableFunc {
	return func(context.Context) error {
		*calls++
		if *calls <= len(errs) {
			return errs[*calls-1]
		}
		return nil
	}
}

func Test_RetryWithExponentialBackoff(t *testing.T) {
	busy := errors.Join(core.ErrBusy, errors.New("lost the race"))

	tests := []struct {
		name              string
		errs              []error
		expectedErr       error
		expectedCalls     int
		expectedErrorType string
		expectedExhausted bool
	}{
		{name: "first call succeeds", expectedCalls: 1, expectedErrorType: "none"},
		{name: "busy twice then success", errs: []error{busy, busy}, expectedCalls: 3, expectedErrorType: "none"},
		{name: "domain refusal is final", errs: []error{core.ErrCopyNotAvailable}, expectedErr: core.ErrCopyNotAvailable, expectedCalls: 1, expectedErrorType: "domain"},
		{name: "technical error is final", errs: []error{busy, errors.New("disk full")}, expectedCalls: 2, expectedErrorType: "other"},
		{name: "busy until attempts run out", errs: []error{busy, busy, busy, busy}, expectedErr: core.ErrBusy, expectedCalls: 3, expectedErrorType: "busy", expectedExhausted: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			calls := 0

			// act
			meta, err := RetryWithExponentialBackoff(context.Background(), failing(&calls, tc.errs...),
				WithMaxAttempts(3), WithBaseDelay(time.Millisecond))

			// assert
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else if tc.expectedErrorType == "none" {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expectedCalls, calls)
			assert.Equal(t, tc.expectedCalls, meta.Attempts)
			assert.Equal(t, tc.expectedErrorType, meta.LastErrorType)
			assert.Equal(t, tc.expectedExhausted, meta.RetriesExhausted)
		})
	}
}

func Test_RetryWithExponentialBackoff_DoublesDelayAndRecordsMetrics(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	calls := 0

	// act
	meta, err := RetryWithExponentialBackoff(context.Background(), failing(&calls, core.ErrBusy, core.ErrBusy, core.ErrBusy),
		WithMaxAttempts(3),
		WithBaseDelay(time.Millisecond),
		WithJitterFactor(0),
		WithMetrics(metrics, "IssueBook"),
	)

	// assert
	assert.ErrorIs(t, err, core.ErrBusy)
	assert.Equal(t, 3*time.Millisecond, meta.TotalDelay)
	assert.Equal(t, 2, metrics.Count(CommandHandlerRetriesMetric, map[string]string{LogAttrCommandType: "IssueBook"}))
	assert.Equal(t, 2, metrics.Count(CommandHandlerRetryDelayMetric, map[string]string{LogAttrCommandType: "IssueBook"}))
	assert.True(t, metrics.HasRecord(CommandHandlerMaxRetriesReachedMetric, map[string]string{LogAttrFinalErrorType: "busy"}))
}

func Test_RetryWithExponentialBackoff_StopsWhenCallerGivesUp(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := RetryWithExponentialBackoff(ctx, func(context.Context) error {
		calls++
		cancel()
		return core.ErrBusy
	})

	assert.ErrorIs(t, err, core.ErrBusy)
	assert.Equal(t, 1, calls)
}

func Test_RetryWithExponentialBackoff_RejectsBadOptions(t *testing.T) {
	tests := []struct {
		option   RetryOption
		expected error
	}{
		{WithMaxAttempts(0), ErrInvalidMaxAttempts},
		{WithBaseDelay(-time.Second), ErrNegativeBaseDelay},
		{WithJitterFactor(1.5), ErrInvalidJitterFactor},
		{WithMetrics(nil, "IssueBook"), ErrNilMetricsCollector},
		{WithMetrics(testdoubles.NewMetricsCollectorSpy(), ""), ErrEmptyCommandType},
	}

	for _, tc := range tests {
		calls := 0
		_, err := RetryWithExponentialBackoff(context.Background(), failing(&calls), tc.option)

		require.ErrorIs(t, err, tc.expected)
		assert.Zero(t, calls)
	}
}
