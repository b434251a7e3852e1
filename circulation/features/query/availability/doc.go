// Package availability implements the Availability query: per-book counts of available, issued,
// damaged and lost copies, for one book or for every book in circulation.
//
// Counts are folded from copy events only and read with eventual consistency, so a response may
// lag a concurrent issue or return slightly.
package availability
