package openissues

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

const (
	queryType = "OpenIssues"
)

// Query represents the intent to list open issues. An empty BorrowerID means every borrower.
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
