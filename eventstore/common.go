package eventstore

import (
	"errors"
)

var (
	// ErrConcurrencyConflict is returned by Append when another event matching the same Filter was
	// appended after the Query that produced the expected MaxSequenceNumberUint.
	ErrConcurrencyConflict = errors.New("concurrency conflict: the event stream was changed concurrently")

	ErrNilDatabaseConnection       = errors.New("database connection must not be nil")
	ErrEmptyEventsTableName        = errors.New("events table name must not be empty")
	ErrBuildingQueryFailed         = errors.New("building the query failed")
	ErrQueryingEventsFailed        = errors.New("querying events failed")
	ErrScanningDBRowFailed         = errors.New("scanning a database row failed")
	ErrBuildingStorableEventFailed = errors.New("building a storable event from a database row failed")
	ErrAppendingEventFailed        = errors.New("appending the event(s) failed")
	ErrGettingRowsAffectedFailed   = errors.New("getting the rows affected failed")
	ErrMigratingSchemaFailed       = errors.New("migrating the event store schema failed")
)

// MaxSequenceNumberUint is a type alias for uint, representing the maximum sequence number for a "dynamic event stream".
type MaxSequenceNumberUint = uint
