// Package memoryengine is an in-process event store.
//
// All events live in a slice guarded by a mutex. Append checks the expected sequence number and
// writes under the same lock, so it gives the same compare-and-swap guarantee as the SQL engines.
// It backs the unit tests and the "memory" store driver; nothing survives a restart.
package memoryengine
