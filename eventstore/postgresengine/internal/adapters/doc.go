// Package adapters lets the Postgres engine run on pgxpool.Pool, sql.DB or sqlx.DB through one small
// DBAdapter interface.
//
// Every adapter can carry an optional replica. Queries marked with eventstore.EventualConsistency
// go to the replica; everything else, and every Exec, goes to the primary.
package adapters
