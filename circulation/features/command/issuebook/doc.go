// Package issuebook implements the Issue operation: a copy moves from Available to Issued and an
// issue record is opened for the borrower, in one conditional append.
//
// The consistency boundary is every event of the copy or the borrower, so the availability check
// and the borrowing limit are both protected against concurrent issues.
package issuebook
