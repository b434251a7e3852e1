// Package openissues implements the Open Issues query: the copies a borrower currently holds.
// Without a borrower it lists every open issue of the library.
package openissues
