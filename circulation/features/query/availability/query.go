package availability

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

const (
	queryType = "Availability"
)

// Query represents the intent to read availability. An empty BookID means every book.
type Query struct {
	BookID core.BookIDString
}

// BuildQuery creates a Query for one book.
func BuildQuery(bookID core.BookIDString) Query {
	return Query{BookID: bookID}
}

// BuildIndexQuery creates a Query for every book.
func BuildIndexQuery() Query {
	return Query{}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
