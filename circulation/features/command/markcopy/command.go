package markcopy

import (
	"errors"
	"time"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

const (
	commandType = "MarkCopy"
)

// Mark is the target status of an administrative mark.
type Mark string

const (
	MarkDamaged Mark = "damaged"
	MarkLost    Mark = "lost"
)

// ErrUnknownMark is returned by ParseMark.
var ErrUnknownMark = errors.New("unknown mark, expected damaged or lost")

// ParseMark parses the textual form of a Mark.
func ParseMark(s string) (Mark, error) {
	switch Mark(s) {
	case MarkDamaged, MarkLost:
		return Mark(s), nil
	default:
		return "", ErrUnknownMark
	}
}

// Command represents the intent to mark a copy Damaged or Lost.
type Command struct {
	CopyID     core.CopyIDString
	Mark       Mark
	Reason     string
	OccurredAt time.Time
}

// BuildCommand creates a Command.
func BuildCommand(copyID core.CopyIDString, mark Mark, reason string, occurredAt time.Time) Command {
	return Command{
		CopyID:     copyID,
		Mark:       mark,
		Reason:     reason,
		OccurredAt: occurredAt,
	}
}

// CommandType returns the command type.
func (c Command) CommandType() string {
	return commandType
}
