package returnbook_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/returnbook"
	. "github.com/Shibashis-Mandal/Library-Management-System/testutil/circulationtest" //nolint:revive
)

func Test_CommandHandler_Handle_ReturnsByIssueID(t *testing.T) {
	// arrange
	ctx := context.Background()
	es := NewMemoryStore(t)
	Seed(t, es,
		GivenCopyAdded("copy-1", "book-1", OnDay(-1)),
		GivenIssued("issue-1", "copy-1", "book-1", "borrower-1", OnDay(0)),
	)
	handler := returnbook.NewCommandHandler(es, returnbook.WithFinePolicy(core.FinePolicy{RatePerDay: 10}))

	// act
	result, err := handler.Handle(ctx, returnbook.BuildCommandForIssue("issue-1", OnDay(20), ""))

	// assert
	require.NoError(t, err)
	event, ok := result.Event.(core.CopyReturnedByBorrower)
	require.True(t, ok)
	assert.Equal(t, "copy-1", event.CopyID)
	assert.Equal(t, 6, event.OverdueDays)
	assert.Equal(t, core.Amount(60), event.FineAmount)
	assert.Equal(t, 1, Count(t, es, core.CopyReturnedByBorrowerEventType))
}

func Test_CommandHandler_Handle_UnknownIssueID(t *testing.T) {
	es := NewMemoryStore(t)
	handler := returnbook.NewCommandHandler(es)

	_, err := handler.Handle(context.Background(), returnbook.BuildCommandForIssue("issue-9", OnDay(1), core.ConditionGood))

	assert.ErrorIs(t, err, core.ErrIssueNotFound)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func Test_CommandHandler_Handle_ConcurrentReturns_ExactlyOneSucceeds(t *testing.T) {
	// arrange
	const contenders = 8

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	es := NewMemoryStore(t)
	Seed(t, es,
		GivenCopyAdded("copy-1", "book-1", OnDay(-1)),
		GivenIssued("issue-1", "copy-1", "book-1", "borrower-1", OnDay(0)),
	)
	handler := returnbook.NewCommandHandler(es)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		errs      []error
	)

	// act
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := handler.Handle(ctx, returnbook.BuildCommand("copy-1", OnDay(3), core.ConditionGood))

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	// assert
	assert.Equal(t, 1, successes)
	for _, err := range errs {
		assert.ErrorIs(t, err, core.ErrNoActiveIssue)
	}
	assert.Equal(t, 1, Count(t, es, core.CopyReturnedByBorrowerEventType))
}
