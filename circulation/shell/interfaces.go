package shell

import (
	"context"

	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// QueriesEvents is the read side of an event store.
type QueriesEvents interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
}

// EventStore is what command handlers need: a read and a conditional append.
type EventStore interface {
	QueriesEvents
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// Command represents the contract for all command types.
// CommandType must work on the zero value, the observable wrapper relies on that.
type Command interface {
	CommandType() string
}

// Query represents the contract for all query types.
type Query interface {
	QueryType() string
}

// QueryResult is a projection. GetSequenceNumber returns the highest sequence number it includes.
type QueryResult interface {
	GetSequenceNumber() uint
}

// CoreCommandHandler processes one command type without any observability concerns.
type CoreCommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// CoreQueryHandler processes one query type without any observability concerns.
type CoreQueryHandler[Q Query, R QueryResult] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
