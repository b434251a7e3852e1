// Package observable decorates command and query handlers with metrics, tracing and logging.
//
// The wrappers hold no business logic. They read the command or query type from the zero
// value, time the call, and translate the HandlerResult or error into a status label.
package observable
