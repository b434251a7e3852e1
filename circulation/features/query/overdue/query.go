package overdue

import (
	"time"
)

const (
	queryType = "Overdue"
)

// Query represents the intent to list overdue issues as of a date.
type Query struct {
	AsOf time.Time
}

// BuildQuery creates a new Query.
func BuildQuery(asOf time.Time) Query {
	return Query{AsOf: asOf}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
