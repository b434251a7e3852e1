package core

// Outcome is what a Decide function concluded.
type Outcome uint8

const (
	OutcomeRejected Outcome = iota
	OutcomeAccepted
	OutcomeAlreadyDone
)

// DecisionResult is the pure answer of a Decide function. A rejection carries only the error,
// so a refused command appends nothing.
type DecisionResult struct {
	Outcome Outcome
	Event   DomainEvent
	Err     error
}

// SuccessDecision accepts the command with the event that records it.
func SuccessDecision(event DomainEvent) DecisionResult {
	return DecisionResult{Outcome: OutcomeAccepted, Event: event}
}

// IdempotentDecision means the command is already in effect.
func IdempotentDecision() DecisionResult {
	return DecisionResult{Outcome: OutcomeAlreadyDone}
}

// ErrorDecision refuses the command with a domain error.
func ErrorDecision(err error) DecisionResult {
	return DecisionResult{Outcome: OutcomeRejected, Err: err}
}

func (r DecisionResult) HasEventToAppend() bool {
	return r.Outcome == OutcomeAccepted && r.Event != nil
}

func (r DecisionResult) IsIdempotent() bool {
	return r.Outcome == OutcomeAlreadyDone
}

// HasError returns the refusal, nil for any other outcome.
func (r DecisionResult) HasError() error {
	if r.Outcome != OutcomeRejected {
		return nil
	}
	return r.Err
}
