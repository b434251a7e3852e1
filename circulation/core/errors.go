package core

import (
	"errors"
)

// Error kinds. Every domain error unwraps to exactly one of them.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrPolicyViolation = errors.New("policy violation")
	ErrBusy            = errors.New("busy: the copy or borrower was changed concurrently, try again")
)

// ErrorCode is the stable, machine-readable name of a domain error.
type ErrorCode string

const (
	CodeBookNotFound             ErrorCode = "BookNotFound"
	CodeCopyNotFound             ErrorCode = "CopyNotFound"
	CodeIssueNotFound            ErrorCode = "IssueNotFound"
	CodeCopyNotAvailable         ErrorCode = "CopyNotAvailable"
	CodeCopyNotIssued            ErrorCode = "CopyNotIssued"
	CodeCopyAlreadyLost          ErrorCode = "CopyAlreadyLost"
	CodeDuplicateOpenIssue       ErrorCode = "DuplicateOpenIssue"
	CodeAlreadyReturned          ErrorCode = "AlreadyReturned"
	CodeNoActiveIssue            ErrorCode = "NoActiveIssue"
	CodeCopyOnLoan               ErrorCode = "CopyOnLoan"
	CodeCopyBelongsToAnotherBook ErrorCode = "CopyBelongsToAnotherBook"
	CodeBorrowingLimitExceeded   ErrorCode = "BorrowingLimitExceeded"
	CodeReturnBeforeIssue        ErrorCode = "ReturnBeforeIssue"
	CodeBusy                     ErrorCode = "Busy"
)

// Domain errors. Compare with errors.Is, either against these or against their kind.
var (
	ErrBookNotFound  = newCirculationError(ErrNotFound, CodeBookNotFound, "book not found")
	ErrCopyNotFound  = newCirculationError(ErrNotFound, CodeCopyNotFound, "copy not found")
	ErrIssueNotFound = newCirculationError(ErrNotFound, CodeIssueNotFound, "issue not found")

	ErrCopyNotAvailable         = newCirculationError(ErrConflict, CodeCopyNotAvailable, "copy is not available")
	ErrCopyNotIssued            = newCirculationError(ErrConflict, CodeCopyNotIssued, "copy is not issued")
	ErrCopyAlreadyLost          = newCirculationError(ErrConflict, CodeCopyAlreadyLost, "copy is already lost")
	ErrDuplicateOpenIssue       = newCirculationError(ErrConflict, CodeDuplicateOpenIssue, "copy already has an open issue")
	ErrAlreadyReturned          = newCirculationError(ErrConflict, CodeAlreadyReturned, "issue was already returned")
	ErrNoActiveIssue            = newCirculationError(ErrConflict, CodeNoActiveIssue, "copy has no open issue")
	ErrCopyOnLoan               = newCirculationError(ErrConflict, CodeCopyOnLoan, "copy is on loan, return it with a condition instead")
	ErrCopyBelongsToAnotherBook = newCirculationError(ErrConflict, CodeCopyBelongsToAnotherBook, "copy is registered for another book")

	ErrBorrowingLimitExceeded = newCirculationError(ErrPolicyViolation, CodeBorrowingLimitExceeded, "borrowing limit exceeded")
	ErrReturnBeforeIssue      = newCirculationError(ErrPolicyViolation, CodeReturnBeforeIssue, "return date is before issue date")
)

type circulationError struct {
	kind error
	code ErrorCode
	msg  string
}

func newCirculationError(kind error, code ErrorCode, msg string) *circulationError {
	return &circulationError{kind: kind, code: code, msg: msg}
}

func (e *circulationError) Error() string {
	return e.msg
}

func (e *circulationError) Unwrap() error {
	return e.kind
}

// CodeOf returns the code of the first domain error in err's tree.
// Busy is reported as CodeBusy even when it is joined with a technical cause.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var ce *circulationError
	if errors.As(err, &ce) {
		return ce.code
	}

	if errors.Is(err, ErrBusy) {
		return CodeBusy
	}

	return ""
}

// KindOf returns ErrNotFound, ErrConflict, ErrPolicyViolation, ErrBusy or nil.
func KindOf(err error) error {
	for _, kind := range []error{ErrBusy, ErrNotFound, ErrConflict, ErrPolicyViolation} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}

// IsDomainError reports whether err carries a NotFound, Conflict or PolicyViolation kind.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrPolicyViolation)
}
