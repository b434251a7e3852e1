// Package copystatus implements the Copy Status query: the lifecycle state of one copy, its open
// issue if any, and the audit trail of every event that touched it.
package copystatus
