package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

func Test_ReadFromReplica(t *testing.T) {
	background := context.Background()

	assert.False(t, readFromReplica(background, true), "unmarked contexts read from the primary")
	assert.False(t, readFromReplica(eventstore.WithStrongConsistency(background), true))
	assert.True(t, readFromReplica(eventstore.WithEventualConsistency(background), true))
	assert.False(t, readFromReplica(eventstore.WithEventualConsistency(background), false))
}
