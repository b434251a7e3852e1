package copystatus

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

const (
	queryType = "CopyStatus"
)

// Query represents the intent to look up one copy.
type Query struct {
	CopyID core.CopyIDString
}

// BuildQuery creates a new Query.
func BuildQuery(copyID core.CopyIDString) Query {
	return Query{CopyID: copyID}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
