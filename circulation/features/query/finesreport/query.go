package finesreport

import (
	"time"
)

const (
	queryType = "FinesReport"
)

// Query represents the intent to report fines. Zero bounds are open.
type Query struct {
	From  time.Time
	Until time.Time
}

// BuildQuery creates a new Query.
func BuildQuery(from, until time.Time) Query {
	return Query{From: from, Until: until}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
