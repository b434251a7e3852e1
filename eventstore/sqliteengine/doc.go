// Package sqliteengine is an event store on a single SQLite file, for small libraries that run the
// librarian binary without a database server.
//
// The database runs in WAL mode with one open connection. Append opens an immediate transaction,
// reads the current max sequence number for the filter, compares it with the expected one and
// inserts, so concurrent appends inside the same process and across processes are serialized.
//
// Payload predicates are evaluated with json_extract.
package sqliteengine
