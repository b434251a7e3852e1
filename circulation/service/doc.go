// Package service is the circulation facade used by the HTTP API and the CLI.
//
// It fills in defaults (issue id, dates, loan period), checks requests against the catalog and
// dispatches to the command and query handlers, each behind an observable wrapper. It never
// retries: a Busy error goes back to the caller, which decides whether to try again.
package service
