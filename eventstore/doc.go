// Package eventstore provides the storage abstractions the circulation engine is built on:
// an append-only event log queried through dynamic filters instead of fixed streams.
//
// A command handler queries every event inside its consistency boundary and remembers the
// highest sequence number it saw. Appending with that number succeeds only if no other event
// matching the same Filter was stored in the meantime; otherwise ErrConcurrencyConflict is
// returned and nothing is written. This is the compare-and-swap that keeps a copy from being
// issued twice.
//
// Filters support:
//   - Event types
//   - JSON payload predicates (any or all must match)
//   - Time ranges (occurred from/until)
//
// Usage:
//
//	filter := eventstore.BuildEventFilter().
//		Matching().
//		AnyEventTypeOf(core.CopyIssuedToBorrowerEventType, core.CopyReturnedByBorrowerEventType).
//		AndAnyPredicateOf(eventstore.P("CopyID", copyID.String())).
//		Finalize()
//
//	events, maxSeq, err := store.Query(ctx, filter)
//	// decide ...
//	err = store.Append(ctx, filter, maxSeq, newEvent)
//
// Engines live in the memoryengine, sqliteengine and postgresengine subpackages.
// OpenTelemetry implementations of the observability interfaces live in oteladapters.
package eventstore
