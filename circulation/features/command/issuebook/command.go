package issuebook

import (
	"time"

	"github.com/google/uuid"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

const (
	commandType = "IssueBook"
)

// Command represents the intent to issue a copy to a borrower.
// IssueID is chosen by the caller, so a resent command is recognized as the same issue.
type Command struct {
	IssueID        core.IssueIDString
	CopyID         core.CopyIDString
	BorrowerID     core.BorrowerIDString
	IssueDate      time.Time
	LoanPeriodDays int
}

// BuildCommand creates a new Command.
func BuildCommand(
	issueID uuid.UUID,
	copyID core.CopyIDString,
	borrowerID core.BorrowerIDString,
	issueDate time.Time,
	loanPeriodDays int,
) Command {

	return Command{
		IssueID:        issueID.String(),
		CopyID:         copyID,
		BorrowerID:     borrowerID,
		IssueDate:      issueDate,
		LoanPeriodDays: loanPeriodDays,
	}
}

// CommandType returns the command type.
func (c Command) CommandType() string {
	return commandType
}
