package shell

import (
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

// HandlerResult is the outcome of a command handler call.
type HandlerResult struct {
	// Idempotent is true when the command was already in effect and nothing was appended.
	Idempotent bool

	// Event is the appended event, nil unless the command changed state.
	Event core.DomainEvent

	// DecisionAttempts is 1, or 2 when a lost append was re-decided against fresh state.
	DecisionAttempts int

	// ConflictDetected reports that the conditional append lost against a concurrent writer.
	ConflictDetected bool
}

// NewSuccessResult creates a HandlerResult for an appended event.
func NewSuccessResult(event core.DomainEvent) HandlerResult {
	return HandlerResult{Event: event, DecisionAttempts: 1}
}

// NewIdempotentResult creates a HandlerResult for a command that was already in effect.
func NewIdempotentResult() HandlerResult {
	return HandlerResult{Idempotent: true, DecisionAttempts: 1}
}

// NewErrorResult creates a HandlerResult for a rejected or failed command.
func NewErrorResult() HandlerResult {
	return HandlerResult{DecisionAttempts: 1}
}

func (r HandlerResult) afterConflict() HandlerResult {
	r.DecisionAttempts = 2
	r.ConflictDetected = true

	return r
}
