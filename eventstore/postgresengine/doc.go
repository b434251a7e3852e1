// Package postgresengine provides a PostgreSQL implementation of the event store, used when the
// library runs several librarian instances against one database.
//
// Payloads are stored as JSONB and predicates are evaluated with the containment operator, so a
// GIN index on payload serves every filter the circulation handlers build.
//
// Supported connection types:
//   - pgxpool.Pool (recommended, optional read replica)
//   - sql.DB (lib/pq)
//   - sqlx.DB
//
// Usage:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(pool, postgresengine.WithLogger(logger))
//	_ = store.CreateSchema(ctx)
//
//	events, maxSeq, _ := store.Query(ctx, filter)
//	err := store.Append(ctx, filter, maxSeq, newEvent)
//
// Appends are serialized per events table by a transaction scoped advisory lock taken in the same
// round trip as the conditional insert.
package postgresengine
