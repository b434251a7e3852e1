// Package markcopy implements the administrative Damaged and Lost marks of a copy on the shelf.
// A copy that is out on loan can only come back damaged or lost through a return.
package markcopy
