package addcopy_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/addcopy"
	. "github.com/Shibashis-Mandal/Library-Management-System/testutil/circulationtest" //nolint:revive
)

func Test_CommandHandler_Handle_ConcurrentAddsOfOneCopy_StoreOneEvent(t *testing.T) {
	// arrange
	const contenders = 6

	es := NewMemoryStore(t)
	handler := addcopy.NewCommandHandler(es)
	command := addcopy.BuildCommand("copy-1", "book-1", "Shelf-A", OnDay(0))

	var wg sync.WaitGroup
	errs := make(chan error, contenders)

	// act
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := handler.Handle(context.Background(), command)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	// assert
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, Count(t, es, core.CopyAddedToCirculationEventType))
}

func Test_CommandHandler_Handle_RejectsOtherBook(t *testing.T) {
	es := NewMemoryStore(t)
	Seed(t, es, GivenCopyAdded("copy-1", "book-1", OnDay(0)))

	_, err := addcopy.NewCommandHandler(es).Handle(
		context.Background(),
		addcopy.BuildCommand("copy-1", "book-2", "Shelf-A", OnDay(1)),
	)

	assert.ErrorIs(t, err, core.ErrCopyBelongsToAnotherBook)
}
