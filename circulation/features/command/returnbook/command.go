package returnbook

import (
	"time"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

const (
	commandType = "ReturnBook"
)

// Command represents the intent to return a copy. Either CopyID or IssueID is set.
type Command struct {
	CopyID     core.CopyIDString
	IssueID    core.IssueIDString
	ReturnDate time.Time
	Condition  core.ReturnCondition
}

// BuildCommand creates a Command that returns whatever open issue the copy has.
func BuildCommand(copyID core.CopyIDString, returnDate time.Time, condition core.ReturnCondition) Command {
	return Command{
		CopyID:     copyID,
		ReturnDate: returnDate,
		Condition:  orGood(condition),
	}
}

// BuildCommandForIssue creates a Command that returns one specific issue.
func BuildCommandForIssue(issueID core.IssueIDString, returnDate time.Time, condition core.ReturnCondition) Command {
	return Command{
		IssueID:    issueID,
		ReturnDate: returnDate,
		Condition:  orGood(condition),
	}
}

// CommandType returns the command type.
func (c Command) CommandType() string {
	return commandType
}

func orGood(condition core.ReturnCondition) core.ReturnCondition {
	if condition == "" {
		return core.ConditionGood
	}

	return condition
}
