package borrowinghistory

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

const (
	queryType = "BorrowingHistory"
)

// Query represents the intent to read the history of one borrower.
type Query struct {
	BorrowerID core.BorrowerIDString
}

// BuildQuery creates a new Query.
func BuildQuery(borrowerID core.BorrowerIDString) Query {
	return Query{BorrowerID: borrowerID}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
