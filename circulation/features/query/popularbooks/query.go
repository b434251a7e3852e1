package popularbooks

import (
	"time"
)

const (
	queryType = "PopularBooks"
)

// Query represents the intent to rank books. Limit <= 0 returns every book, zero bounds are open.
type Query struct {
	Limit int
	From  time.Time
	Until time.Time
}

// BuildQuery creates a new Query.
func BuildQuery(limit int, from, until time.Time) Query {
	return Query{Limit: limit, From: from, Until: until}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
