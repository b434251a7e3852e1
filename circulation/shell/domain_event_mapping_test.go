package shell_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

func Test_StorableEventFrom_And_Back_KeepsReturnDetails(t *testing.T) {
	// arrange
	issueDate := time.Date(2025, 1, 1, 9, 30, 0, 123456789, time.UTC)
	issue := core.IssueRecord{
		IssueID:    uuid.NewString(),
		CopyID:     "copy-1",
		BookID:     "book-1",
		BorrowerID: "borrower-1",
		IssueDate:  core.ToOccurredAt(issueDate),
		DueDate:    core.DueDateFor(issueDate, 14),
	}
	event := core.BuildCopyReturnedByBorrower(issue, issueDate.AddDate(0, 0, 20), core.FineAssessment{OverdueDays: 6, Fine: 30}, core.ConditionDamaged)
	metadata := shell.BuildEventMetadata(uuid.New(), uuid.New(), uuid.New()).WithActor("admin")

	// act
	storableEvent, err := shell.StorableEventFrom(event, metadata)
	require.NoError(t, err)
	envelope, err := shell.EventEnvelopeFrom(storableEvent)
	require.NoError(t, err)

	// assert
	assert.Equal(t, core.CopyReturnedByBorrowerEventType, storableEvent.EventType)
	assert.Equal(t, event.OccurredAt, storableEvent.OccurredAt)
	assert.Contains(t, string(storableEvent.PayloadJSON), `"CopyID":"copy-1"`)

	returned, ok := envelope.DomainEvent.(core.CopyReturnedByBorrower)
	require.True(t, ok)
	assert.Equal(t, 6, returned.OverdueDays)
	assert.Equal(t, core.Amount(30), returned.FineAmount)
	assert.Equal(t, core.ConditionDamaged, returned.Condition)
	assert.True(t, event.DueDate.Equal(returned.DueDate))
	assert.Equal(t, metadata, envelope.EventMetadata)
}

func Test_DomainEventFrom_Fails_ForUnknownTypeOrBrokenPayload(t *testing.T) {
	unknown, err := eventstore.BuildStorableEventWithEmptyMetadata("BookBurned", time.Now(), []byte(`{}`))
	require.NoError(t, err)

	_, err = shell.DomainEventFrom(unknown)
	assert.ErrorIs(t, err, shell.ErrMappingToDomainEventUnknownEventType)

	broken, err := eventstore.BuildStorableEventWithEmptyMetadata(core.CopyIssuedToBorrowerEventType, time.Now(), []byte(`{"DueDate": 42}`))
	require.NoError(t, err)

	_, err = shell.DomainEventsFrom(eventstore.StorableEvents{broken})
	assert.ErrorIs(t, err, shell.ErrMappingToDomainEventFailed)
}

func Test_EventMetadataFromContext(t *testing.T) {
	correlationID := uuid.New()
	ctx := shell.WithActor(shell.WithCorrelationID(context.Background(), correlationID), "librarian")

	metadata := shell.EventMetadataFromContext(ctx)

	assert.Equal(t, correlationID.String(), metadata.CorrelationID)
	assert.Equal(t, correlationID.String(), metadata.CausationID)
	assert.NotEqual(t, metadata.CorrelationID, metadata.MessageID)
	assert.Equal(t, "librarian", metadata.Actor)

	standalone := shell.EventMetadataFromContext(context.Background())
	assert.Equal(t, standalone.MessageID, standalone.CorrelationID)
	assert.Empty(t, standalone.Actor)
}
