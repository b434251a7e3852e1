package shell

import (
	"context"
	"errors"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// Recheck re-runs a command's decision against fresh state. It must not append.
type Recheck func(ctx context.Context) (core.DecisionResult, error)

// ResolveAppendConflict turns a failed Append into the error a caller should see.
//
// A lost compare-and-swap is re-decided once: a domain error from the fresh state is returned
// as is, so N racing issues of one copy yield one success and N-1 CopyNotAvailable.
// A fresh idempotent decision means a concurrent identical command won, which is a success.
// Anything else is Busy.
func ResolveAppendConflict(ctx context.Context, appendErr error, recheck Recheck) (HandlerResult, error) {
	if !errors.Is(appendErr, eventstore.ErrConcurrencyConflict) {
		return NewErrorResult(), ClassifyStoreError(appendErr)
	}

	decision, err := recheck(ctx)
	if err != nil {
		return NewErrorResult().afterConflict(), errors.Join(core.ErrBusy, appendErr, err)
	}

	if decisionErr := decision.HasError(); decisionErr != nil {
		return NewErrorResult().afterConflict(), decisionErr
	}

	if decision.IsIdempotent() {
		return NewIdempotentResult().afterConflict(), nil
	}

	return NewErrorResult().afterConflict(), errors.Join(core.ErrBusy, appendErr)
}

// ClassifyStoreError marks store failures caused by a caller deadline as Busy.
func ClassifyStoreError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, core.ErrBusy) {
		return errors.Join(core.ErrBusy, err)
	}

	return err
}
