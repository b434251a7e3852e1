package addcopy

import (
	"time"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

const (
	commandType = "AddCopy"
)

// Command represents the intent to put a copy into circulation.
type Command struct {
	CopyID        core.CopyIDString
	BookID        core.BookIDString
	ShelfLocation string
	OccurredAt    time.Time
}

// BuildCommand creates a Command.
func BuildCommand(copyID core.CopyIDString, bookID core.BookIDString, shelfLocation string, occurredAt time.Time) Command {
	return Command{
		CopyID:        copyID,
		BookID:        bookID,
		ShelfLocation: shelfLocation,
		OccurredAt:    occurredAt,
	}
}

// CommandType returns the command type.
func (c Command) CommandType() string {
	return commandType
}
