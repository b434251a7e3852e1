// Package core holds the pure circulation domain: the events that make up a copy's history,
// the Copy Inventory and Circulation Ledger folded from them, the fine policy and the
// error vocabulary shared by every feature.
//
// Nothing in here talks to a store. Command features project state from a slice of
// DomainEvents, decide, and hand the resulting event to the shell for appending.
package core
