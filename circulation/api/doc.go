// Package api exposes the circulation service over HTTP with gin.
//
// Desk operations (issue, return, marks, reports) need an admin token. Students may browse
// availability and the catalog and read their own loans and history. Busy results are retried
// with backoff before they surface as 503 with a Retry-After header.
package api
