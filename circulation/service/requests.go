package service

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/markcopy"
)

// ErrInvalidRequest is joined with the field errors of a rejected request.
var ErrInvalidRequest = errors.New("invalid request")

// IssueRequest asks to issue a copy. A nil IssueID gets a fresh one, a zero IssueDate means now.
// Resending a request with the same IssueID is safe.
type IssueRequest struct {
	IssueID    uuid.UUID
	CopyID     core.CopyIDString     `validate:"required,max=64"`
	BorrowerID core.BorrowerIDString `validate:"required,max=64"`
	IssueDate  time.Time
}

// ReturnRequest asks to return a copy, addressed by copy or by issue.
type ReturnRequest struct {
	CopyID     core.CopyIDString  `validate:"required_without=IssueID,max=64"`
	IssueID    core.IssueIDString `validate:"required_without=CopyID,max=64"`
	ReturnDate time.Time
	Condition  core.ReturnCondition `validate:"omitempty,oneof=Good Damaged Lost"`
}

// AddCopyRequest asks to put a copy into circulation.
type AddCopyRequest struct {
	CopyID        core.CopyIDString `validate:"required,max=64"`
	BookID        core.BookIDString `validate:"required,max=64"`
	ShelfLocation string            `validate:"max=64"`
}

// MarkRequest asks to mark a copy on the shelf Damaged or Lost.
type MarkRequest struct {
	CopyID core.CopyIDString `validate:"required,max=64"`
	Mark   markcopy.Mark     `validate:"required,oneof=damaged lost"`
	Reason string            `validate:"max=512"`
}

// ReturnReceipt is what a borrower is told at the desk.
type ReturnReceipt struct {
	IssueID     core.IssueIDString
	CopyID      core.CopyIDString
	BookID      core.BookIDString
	BorrowerID  core.BorrowerIDString
	DueDate     time.Time
	ReturnDate  time.Time
	OverdueDays int
	FineAmount  core.Amount
	Condition   core.ReturnCondition
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateRequest(request any) error {
	if err := validate.Struct(request); err != nil {
		return errors.Join(ErrInvalidRequest, err)
	}

	return nil
}
