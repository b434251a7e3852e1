// Package catalog holds the bibliographic side of the library: books and their physical copies.
//
// The catalog is read-only for the circulation engine. It answers which book a copy belongs to and
// how many copies a book has. Copy state lives in the event store, not here.
package catalog
