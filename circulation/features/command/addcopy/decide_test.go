package addcopy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/addcopy"
	. "github.com/Shibashis-Mandal/Library-Management-System/testutil/circulationtest" //nolint:revive
)

func Test_Decide(t *testing.T) {
	command := addcopy.BuildCommand("copy-1", "book-1", "Shelf-B", OnDay(0))

	t.Run("new copy", func(t *testing.T) {
		result := addcopy.Decide(core.DomainEvents{}, command)

		require.True(t, result.HasEventToAppend())
		event, ok := result.Event.(core.CopyAddedToCirculation)
		require.True(t, ok)
		assert.Equal(t, "Shelf-B", event.ShelfLocation)
	})

	t.Run("same copy same book", func(t *testing.T) {
		result := addcopy.Decide(core.DomainEvents{GivenCopyAdded("copy-1", "book-1", OnDay(-1))}, command)

		assert.True(t, result.IsIdempotent())
	})

	t.Run("same copy other book", func(t *testing.T) {
		result := addcopy.Decide(core.DomainEvents{GivenCopyAdded("copy-1", "book-2", OnDay(-1))}, command)

		assert.ErrorIs(t, result.HasError(), core.ErrCopyBelongsToAnotherBook)
	})
}
