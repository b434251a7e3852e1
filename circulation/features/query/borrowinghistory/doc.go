// Package borrowinghistory implements the Borrowing History query: every issue of one borrower,
// open and returned, with the fines charged so far.
package borrowinghistory
